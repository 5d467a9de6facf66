package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"inventario/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "name is required.",
		"max":      fmt.Sprintf("name must be at most %d characters.", models.NameMaxLength),
	},
	"price": {
		"gt": "price must be greater than 0.",
	},
	"stock": {
		"gte": "stock cannot be negative.",
	},
}

// ProductValidator checks products against the validate tags of models.Product.
type ProductValidator struct {
	validate *validator.Validate
}

// NewProductValidator creates a ProductValidator. Field errors are keyed by
// the json name of the field.
func NewProductValidator() *ProductValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias(models.NameRule, fmt.Sprintf("required,max=%d", models.NameMaxLength))
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return &ProductValidator{validate: v}
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Check returns the rule violations of p, or nil when p is valid.
func (v *ProductValidator) Check(p models.Product) FieldErrors {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return FieldErrors{"__all__": err.Error()}
	}

	errs := FieldErrors{}
	for _, e := range validationErrors {
		field := e.Field()
		if msg, ok := fieldMessages[field][e.ActualTag()]; ok {
			errs[field] = msg
			continue
		}
		errs[field] = field + " is invalid."
	}
	return errs
}

// Validate parses values, merges them onto base and checks the result. It
// returns the candidate product or a *ValidationError.
func (v *ProductValidator) Validate(base models.Product, values FormValues) (models.Product, error) {
	in, errs := ParseProductInput(values)
	candidate := Merge(base, in)

	for field, msg := range v.Check(candidate) {
		if _, seen := errs[field]; !seen {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		return models.Product{}, &ValidationError{Fields: errs}
	}
	return candidate, nil
}
