package services

import (
	"context"

	"inventario/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SampleProducts is the catalogue loaded by SeedSampleProducts.
func SampleProducts() []models.Product {
	return []models.Product{
		{
			Name:        "Laptop Dell Inspiron 15",
			Description: "Intel Core i5 laptop, 8GB RAM, 256GB SSD, 15.6 inch display",
			Price:       decimal.RequireFromString("899.99"),
			Stock:       15,
		},
		{
			Name:        "Logitech Wireless Mouse",
			Description: "Ergonomic USB wireless mouse with long battery life",
			Price:       decimal.RequireFromString("25.50"),
			Stock:       50,
		},
		{
			Name:        "RGB Mechanical Keyboard",
			Description: "Mechanical keyboard with blue switches and configurable RGB backlight",
			Price:       decimal.RequireFromString("120.00"),
			Stock:       8,
		},
		{
			Name:        "24\" Full HD Monitor",
			Description: "24 inch LED monitor, 1920x1080, HDMI and VGA",
			Price:       decimal.RequireFromString("180.75"),
			Stock:       12,
		},
		{
			Name:        "HD Webcam",
			Description: "1080p webcam with built-in microphone",
			Price:       decimal.RequireFromString("45.99"),
			Stock:       25,
		},
		{
			Name:        "1TB External Hard Drive",
			Description: "Portable 1TB USB 3.0 drive for Windows and Mac",
			Price:       decimal.RequireFromString("75.00"),
			Stock:       3,
		},
	}
}

// SeedSampleProducts creates every sample product whose name is not stored yet.
// It returns the number of products created.
func (s *ProductService) SeedSampleProducts(ctx context.Context) (int, error) {
	created := 0
	for _, sample := range SampleProducts() {
		if err := s.validateSample(sample); err != nil {
			return created, err
		}
		product := sample
		isNew, err := s.repo.FirstOrCreateByName(ctx, &product)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
			logrus.WithField("product_id", product.ID).Infof("Seeded product: %s", product.Name)
			continue
		}
		logrus.Infof("Product already exists: %s", product.Name)
	}
	return created, nil
}
