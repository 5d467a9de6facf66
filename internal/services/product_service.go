package services

import (
	"context"
	"fmt"
	"time"

	"inventario/internal/forms"
	"inventario/internal/models"
	"inventario/internal/repositories"

	"github.com/sirupsen/logrus"
)

// EventPublisher delivers product lifecycle events to other systems.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *forms.ProductValidator
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are published.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		validator: forms.NewProductValidator(),
		publisher: publisher,
	}
}

// ListProducts retrieves all active products, newest first.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAllActive(ctx)
}

// GetProduct retrieves a single active product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetActiveByID(ctx, id)
}

// CreateProduct validates the submitted values and stores a new product.
// Invalid submissions return a *forms.ValidationError and store nothing.
func (s *ProductService) CreateProduct(ctx context.Context, values forms.FormValues) (*models.Product, error) {
	candidate, err := s.validator.Validate(models.Product{}, values)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &candidate); err != nil {
		return nil, err
	}
	s.publish(models.ProductCreated, candidate)
	return &candidate, nil
}

// UpdateProduct merges the submitted values onto an active product and stores
// the result. The stored record is left unchanged when validation fails.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, values forms.FormValues) (*models.Product, error) {
	existing, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	candidate, err := s.validator.Validate(*existing, values)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &candidate); err != nil {
		return nil, err
	}
	s.publish(models.ProductUpdated, candidate)
	return &candidate, nil
}

// DeleteProduct soft-deletes an active product and returns it as it was deactivated.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return nil, err
	}
	product.Deactivate(time.Now())
	s.publish(models.ProductDeleted, *product)
	return product, nil
}

func (s *ProductService) publish(eventType models.ProductEventType, p models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(models.NewProductEvent(eventType, p)); err != nil {
		logrus.WithError(err).
			WithField("event", eventType).
			WithField("product_id", p.ID).
			Warn("Failed to publish product event")
	}
}

// validateSample rejects sample data that would not pass the product form.
func (s *ProductService) validateSample(p models.Product) error {
	if errs := s.validator.Check(p); errs != nil {
		return fmt.Errorf("sample product %q is invalid: %v", p.Name, errs)
	}
	return nil
}
