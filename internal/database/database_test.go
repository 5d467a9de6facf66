package database_test

import (
	"testing"

	"inventario/internal/database"
	"inventario/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMigratesProducts(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, "file:open_test?mode=memory&cache=shared", false)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.Product{}))
	assert.True(t, db.Migrator().HasColumn(&models.Product{}, "active"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("oracle", "", false)
	assert.ErrorContains(t, err, "unsupported database driver")
}
