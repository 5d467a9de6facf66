package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"inventario/internal/forms"
	"inventario/internal/models"
	"inventario/internal/repositories"
	"inventario/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAllActive(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetActiveByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) FirstOrCreateByName(ctx context.Context, product *models.Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishProductEvent(event models.ProductEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func eventOfType(eventType models.ProductEventType) interface{} {
	return mock.MatchedBy(func(e models.ProductEvent) bool { return e.Type == eventType })
}

var ctx = context.Background()

func existingProduct() *models.Product {
	return &models.Product{
		ID:     "0190a8e2-1111-7000-8000-000000000003",
		Name:   "Keyboard",
		Price:  decimal.RequireFromString("75.00"),
		Stock:  25,
		Active: true,
	}
}

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProducts := []models.Product{
		{ID: "2", Name: "Product B", Price: decimal.NewFromInt(20), Stock: 50, Active: true},
		{ID: "1", Name: "Product A", Price: decimal.NewFromInt(10), Stock: 100, Active: true},
	}
	mockRepo.On("GetAllActive", ctx).Return(expectedProducts, nil).Once()

	products, err := service.ListProducts(ctx)

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expected := existingProduct()
	mockRepo.On("GetActiveByID", ctx, expected.ID).Return(expected, nil).Once()
	product, err := service.GetProduct(ctx, expected.ID)
	assert.NoError(t, err)
	assert.Equal(t, expected, product)

	mockRepo.On("GetActiveByID", ctx, "999").Return(nil, fmt.Errorf("product with ID 999: %w", repositories.ErrProductNotFound)).Once()
	product, err = service.GetProduct(ctx, "999")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockMQ := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockMQ)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Mouse" && p.Price.Equal(decimal.RequireFromString("25.50")) && p.Stock == 50
	})).Run(func(args mock.Arguments) {
		p := args.Get(1).(*models.Product)
		p.ID = "new-id"
		p.Active = true
	}).Return(nil).Once()
	mockMQ.On("PublishProductEvent", eventOfType(models.ProductCreated)).Return(nil).Once()

	product, err := service.CreateProduct(ctx, forms.FormValues{"name": "Mouse", "price": "25.50", "stock": "50"})

	require.NoError(t, err)
	assert.Equal(t, "new-id", product.ID)
	assert.True(t, product.Active)
	mockRepo.AssertExpectations(t)
	mockMQ.AssertExpectations(t)
}

func TestProductService_CreateProductRejectsInvalidValues(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockMQ := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockMQ)

	product, err := service.CreateProduct(ctx, forms.FormValues{"name": "Bad", "price": "0", "stock": "5"})

	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price must be greater than 0.", verr.Fields["price"])
	assert.Nil(t, product)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockMQ.AssertNotCalled(t, "PublishProductEvent", mock.Anything)
}

func TestProductService_CreateProductRepositoryFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("database error")).Once()

	_, err := service.CreateProduct(ctx, forms.FormValues{"name": "Mouse", "price": "1", "stock": "1"})

	assert.ErrorContains(t, err, "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockMQ := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockMQ)
	existing := existingProduct()

	mockRepo.On("GetActiveByID", ctx, existing.ID).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == existing.ID && p.Name == "Keyboard Pro" && p.Stock == 25
	})).Return(nil).Once()
	mockMQ.On("PublishProductEvent", eventOfType(models.ProductUpdated)).Return(nil).Once()

	product, err := service.UpdateProduct(ctx, existing.ID, forms.FormValues{"name": "Keyboard Pro"})

	require.NoError(t, err)
	assert.Equal(t, "Keyboard Pro", product.Name)
	assert.True(t, product.Price.Equal(existing.Price))
	mockRepo.AssertExpectations(t)
	mockMQ.AssertExpectations(t)
}

func TestProductService_UpdateProductRejectsNegativePrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	existing := existingProduct()

	mockRepo.On("GetActiveByID", ctx, existing.ID).Return(existing, nil).Once()

	_, err := service.UpdateProduct(ctx, existing.ID, forms.FormValues{"price": "-1"})

	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price must be greater than 0.", verr.Fields["price"])
	assert.True(t, existing.Price.Equal(decimal.RequireFromString("75.00")))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProductRejectsNegativeStock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockMQ := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockMQ)
	existing := existingProduct()
	stockBefore := existing.Stock

	mockRepo.On("GetActiveByID", ctx, existing.ID).Return(existing, nil).Once()

	_, err := service.UpdateProduct(ctx, existing.ID, forms.FormValues{"stock": "-1"})

	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, forms.FieldErrors{"stock": "stock cannot be negative."}, verr.Fields)
	assert.Equal(t, stockBefore, existing.Stock)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockMQ.AssertNotCalled(t, "PublishProductEvent", mock.Anything)
}

func TestProductService_UpdateProductNotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetActiveByID", ctx, "999").Return(nil, repositories.ErrProductNotFound).Once()

	_, err := service.UpdateProduct(ctx, "999", forms.FormValues{"name": "Ghost"})

	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockMQ := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockMQ)
	existing := existingProduct()

	mockRepo.On("GetActiveByID", ctx, existing.ID).Return(existing, nil).Once()
	mockRepo.On("Deactivate", ctx, existing.ID).Return(nil).Once()
	mockMQ.On("PublishProductEvent", eventOfType(models.ProductDeleted)).Return(errors.New("broker down")).Once()

	product, err := service.DeleteProduct(ctx, existing.ID)

	require.NoError(t, err, "publish failures must not fail the delete")
	assert.False(t, product.Active)
	mockRepo.AssertExpectations(t)
	mockMQ.AssertExpectations(t)

	mockRepo.On("GetActiveByID", ctx, existing.ID).Return(nil, repositories.ErrProductNotFound).Once()
	_, err = service.DeleteProduct(ctx, existing.ID)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestProductService_DeleteTwiceAgainstMemoryRepository(t *testing.T) {
	service := services.NewProductService(repositories.NewMemoryProductRepository(), nil)

	created, err := service.CreateProduct(ctx, forms.FormValues{"name": "Webcam", "price": "45.99", "stock": "25"})
	require.NoError(t, err)

	deleted, err := service.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted.Active)

	_, err = service.DeleteProduct(ctx, created.ID)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	products, err := service.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductService_SeedSampleProducts(t *testing.T) {
	service := services.NewProductService(repositories.NewMemoryProductRepository(), nil)

	created, err := service.SeedSampleProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(services.SampleProducts()), created)

	created, err = service.SeedSampleProducts(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	products, err := service.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(services.SampleProducts()))
}
