package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"inventario/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func memoryConfig() *config.Config {
	return &config.Config{
		AppEnv:            "test",
		LogLevel:          "info",
		DBDriver:          "memory",
		CacheTTL:          time.Minute,
		SessionExpiration: time.Hour,
	}
}

func TestHealthAndRootRedirect(t *testing.T) {
	productService, cleanup, err := buildProductService(memoryConfig())
	require.NoError(t, err)
	defer cleanup()

	app, err := NewApp(productService, time.Hour)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "healthy", health["status"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/productos/", resp.Header.Get("Location"))
}

func TestSeededProductsAreListed(t *testing.T) {
	productService, cleanup, err := buildProductService(memoryConfig())
	require.NoError(t, err)
	defer cleanup()
	_, err = productService.SeedSampleProducts(context.Background())
	require.NoError(t, err)

	app, err := NewApp(productService, time.Hour)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/productos/", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Laptop Dell Inspiron 15")
	assert.Contains(t, string(body), "899.99")
}

func TestBuildProductServiceWithSQLiteAndRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.DBDriver = "sqlite"
	cfg.DatabaseDSN = "file:main_test?mode=memory&cache=shared"
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	productService, cleanup, err := buildProductService(cfg)
	require.NoError(t, err)
	defer cleanup()

	products, err := productService.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.True(t, mr.Exists("inventario:products:0:active"))
}

func TestBuildProductServiceRejectsUnreachableRedis(t *testing.T) {
	cfg := memoryConfig()
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	_, _, err := buildProductService(cfg)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
