package repositories

import (
	"context"
	"errors"

	"inventario/internal/models"
)

// ErrProductNotFound is returned when a product does not exist or is no longer active.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
// Every read and write only sees active products.
type ProductRepository interface {
	GetAllActive(ctx context.Context) ([]models.Product, error)
	GetActiveByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Deactivate(ctx context.Context, id string) error
	FirstOrCreateByName(ctx context.Context, product *models.Product) (bool, error)
}
