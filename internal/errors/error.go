// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var ErrProductNotFound = errors.New("product not found")

// ErrStorage marks failures of the backing document: filesystem access or malformed JSON.
var ErrStorage = errors.New("storage error")

// ValidationError reports the input fields that failed validation, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
