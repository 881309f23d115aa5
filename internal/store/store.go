// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a stored record.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// ProductInput carries every writable field of a product.
// Price is a decimal so that both JSON numbers and numeric strings are accepted.
type ProductInput struct {
	Name        string          `json:"name"        validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"       validate:"gt=0"`
	Category    string          `json:"category"    validate:"required"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns all products in stored order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create validates the input and adds a new product with the next free ID.
	// Returns a *ValidationError if the input is invalid.
	Create(ctx context.Context, input ProductInput) (*Product, error)

	// Update validates the input and replaces every field of the product except its ID.
	// Returns a *ValidationError if the input is invalid
	// and ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, input ProductInput) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}
