package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventario/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAllActive retrieves active products, newest first.
func (r *GORMProductRepository) GetAllActive(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at desc").
		Order("id desc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active products: %w", err)
	}
	return products, nil
}

// GetActiveByID retrieves a single active product by its ID.
func (r *GORMProductRepository) GetActiveByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ? AND active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new active product, assigning a time-ordered ID when none is set.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate product ID: %w", err)
		}
		product.ID = id.String()
	}
	product.Active = true
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the editable fields of an active product and refreshes updated_at.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND active = ?", product.ID, true).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not updated: %w", product.ID, ErrProductNotFound)
	}
	product.UpdatedAt = now
	return nil
}

// Deactivate soft-deletes an active product.
func (r *GORMProductRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not deactivated: %w", id, ErrProductNotFound)
	}
	return nil
}

// FirstOrCreateByName loads the product with the same name into product, or
// creates it. It reports whether a row was created.
func (r *GORMProductRepository) FirstOrCreateByName(ctx context.Context, product *models.Product) (bool, error) {
	var existing models.Product
	err := r.db.WithContext(ctx).Where("name = ?", product.Name).First(&existing).Error
	if err == nil {
		*product = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up product %q: %w", product.Name, err)
	}
	if err := r.Create(ctx, product); err != nil {
		return false, err
	}
	return true, nil
}
