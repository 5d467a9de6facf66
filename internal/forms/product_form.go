// Package forms turns submitted product fields into a validated models.Product.
//
// Submitted values are parsed into a ProductInput, merged onto a base product
// (a zero product when creating, the stored record when updating) and the
// merged candidate is checked against the model's validation tags. The result
// is either a candidate ready for persistence or a *ValidationError, never both.
package forms

import (
	"fmt"
	"strconv"
	"strings"

	"inventario/internal/models"

	"github.com/shopspring/decimal"
)

const (
	priceMaxDecimalPlaces = 2
	priceMaxDigits        = 10
)

var priceUpperBound = decimal.New(1, priceMaxDigits-priceMaxDecimalPlaces)

// FormValues holds submitted form fields by name. A missing key means the
// field was not submitted at all.
type FormValues map[string]string

// FieldErrors maps a form field name to a human readable message.
type FieldErrors map[string]string

// ValidationError is returned when a submission cannot be persisted.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// ProductInput is the set of fields a submission changes. Nil fields are left
// untouched by Merge.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

// ParseProductInput converts raw form strings into a ProductInput. Fields that
// cannot be converted are reported in the returned FieldErrors and left nil.
func ParseProductInput(values FormValues) (ProductInput, FieldErrors) {
	var in ProductInput
	errs := FieldErrors{}

	if raw, ok := values["name"]; ok {
		name := strings.TrimSpace(raw)
		in.Name = &name
	}
	if raw, ok := values["description"]; ok {
		description := strings.TrimSpace(raw)
		in.Description = &description
	}
	if raw, ok := values["price"]; ok {
		price, msg := parsePrice(raw)
		if msg != "" {
			errs["price"] = msg
		} else {
			in.Price = &price
		}
	}
	if raw, ok := values["stock"]; ok {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			errs["stock"] = "stock is required."
		} else if stock, err := strconv.Atoi(raw); err != nil {
			errs["stock"] = "stock must be a whole number."
		} else {
			in.Stock = &stock
		}
	}

	return in, errs
}

func parsePrice(raw string) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, "price is required."
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, "price must be a number."
	}
	if -price.Exponent() > priceMaxDecimalPlaces {
		return decimal.Decimal{}, fmt.Sprintf("price must have at most %d decimal places.", priceMaxDecimalPlaces)
	}
	if price.Abs().GreaterThanOrEqual(priceUpperBound) {
		return decimal.Decimal{}, fmt.Sprintf("price must have at most %d digits.", priceMaxDigits)
	}
	return price, ""
}

// Merge applies the non-nil fields of in to a copy of base.
func Merge(base models.Product, in ProductInput) models.Product {
	candidate := base
	if in.Name != nil {
		candidate.Name = *in.Name
	}
	if in.Description != nil {
		candidate.Description = *in.Description
	}
	if in.Price != nil {
		candidate.Price = *in.Price
	}
	if in.Stock != nil {
		candidate.Stock = *in.Stock
	}
	return candidate
}

// ValuesFromProduct renders p as the values of a pre-filled form.
func ValuesFromProduct(p models.Product) FormValues {
	return FormValues{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.StringFixed(priceMaxDecimalPlaces),
		"stock":       strconv.Itoa(p.Stock),
	}
}

// InitialValues are shown by an empty create form.
func InitialValues() FormValues {
	return FormValues{"stock": "0"}
}
