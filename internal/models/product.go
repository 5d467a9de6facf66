package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NameMaxLength is the column width of products.name.
const NameMaxLength = 200

// NameRule is the validator alias checking Name against NameMaxLength.
const NameRule = "product_name"

// Product represents an inventory item. Inactive products are soft-deleted.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(200);not null" validate:"product_name"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null" validate:"gt=0"`
	Stock       int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	Active      bool            `json:"active" gorm:"not null;default:true;index"`
}

func (Product) TableName() string {
	return "products"
}

// String returns the product name.
func (p Product) String() string {
	return p.Name
}

// AbsoluteURL is the canonical detail page of the product.
func (p Product) AbsoluteURL() string {
	return "/productos/" + p.ID + "/"
}

// IsActive reports whether the product is visible to list, detail, update and delete.
func (p Product) IsActive() bool {
	return p.Active
}

// Deactivate soft-deletes the product. There is no way back to active.
func (p *Product) Deactivate(now time.Time) {
	p.Active = false
	p.UpdatedAt = now
}
