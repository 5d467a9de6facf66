package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductEventType names a product lifecycle transition.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is the message published after a product mutation.
type ProductEvent struct {
	Type       ProductEventType `json:"type"`
	ProductID  string           `json:"product_id"`
	Name       string           `json:"name"`
	Price      decimal.Decimal  `json:"price"`
	Stock      int              `json:"stock"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewProductEvent snapshots p for an event of the given type.
func NewProductEvent(eventType ProductEventType, p Product) ProductEvent {
	return ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		OccurredAt: time.Now().UTC(),
	}
}
