package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"inventario/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Soft-deleted products are kept in the map with Active set to false.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
		now:      time.Now,
	}
}

// GetAllActive returns active products, newest first.
func (r *MemoryProductRepository) GetAllActive(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.IsActive() {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool {
		a, b := productList[i], productList[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return productList, nil
}

// GetActiveByID returns an active product by its ID.
func (r *MemoryProductRepository) GetActiveByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok || !product.IsActive() {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new active product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.create(product)
}

func (r *MemoryProductRepository) create(product *models.Product) error {
	if product.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate product ID: %w", err)
		}
		product.ID = id.String()
	}
	now := r.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.Active = true
	r.products[product.ID] = *product
	return nil
}

// Update modifies the editable fields of an active product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok || !stored.IsActive() {
		return fmt.Errorf("product with ID %s not updated: %w", product.ID, ErrProductNotFound)
	}
	stored.Name = product.Name
	stored.Description = product.Description
	stored.Price = product.Price
	stored.Stock = product.Stock
	stored.UpdatedAt = r.now()
	r.products[product.ID] = stored

	product.UpdatedAt = stored.UpdatedAt
	return nil
}

// Deactivate soft-deletes an active product.
func (r *MemoryProductRepository) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[id]
	if !ok || !stored.IsActive() {
		return fmt.Errorf("product with ID %s not deactivated: %w", id, ErrProductNotFound)
	}
	stored.Deactivate(r.now())
	r.products[id] = stored
	return nil
}

// FirstOrCreateByName loads the product with the same name (active or not) or creates it.
func (r *MemoryProductRepository) FirstOrCreateByName(_ context.Context, product *models.Product) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.Name == product.Name {
			*product = p
			return false, nil
		}
	}
	if err := r.create(product); err != nil {
		return false, err
	}
	return true, nil
}
