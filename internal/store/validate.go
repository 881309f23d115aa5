package store

import (
	"errors"
	"math"
	"reflect"
	"strings"

	producterrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// newValidator returns a validator that reports JSON field names and validates decimals as float64.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// normalize trims the text fields of the input.
func normalize(input ProductInput) ProductInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	return input
}

// validateInput checks the input and converts validator failures into a *ValidationError.
// A price beyond the float64 range is rejected with rule "max": it is stored as a JSON number.
func (s *JSONStore) validateInput(input ProductInput) error {
	fields := make(map[string]string)
	if err := s.validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		for _, fieldErr := range validationErrors {
			// fieldErr.Tag() returns "required", "gt", etc.
			fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
	}
	if _, failed := fields["price"]; !failed && math.IsInf(input.Price.InexactFloat64(), 0) {
		fields["price"] = "failed on rule: max"
	}
	if len(fields) == 0 {
		return nil
	}
	return &producterrors.ValidationError{Fields: fields}
}
