// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/messaging/events"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product to the catalog.
	// Returns a *ValidationError if the input is invalid.
	Create(ctx context.Context, product ProductInputDto) (*ProductDto, error)

	// Update replaces an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and a *ValidationError if the input is invalid.
	Update(ctx context.Context, id int64, product ProductInputDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}

// Service implements ProductService and provides methods to manage products.
// Every successful mutation is counted and announced through the publisher.
type Service struct {
	repository     store.ProductStore
	publisher      messaging.Publisher
	changesCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided repository and event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher) *Service {
	meter := otel.Meter("catalog")
	changesCounter, err := meter.Int64Counter("product_changes", metric.WithDescription("Total number of product creations, updates and deletions"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_changes counter: %v", err))
	}
	return &Service{
		repository:     repo,
		publisher:      publisher,
		changesCounter: changesCounter,
	}
}

// ProductInputDto is the request body for creating or updating a product.
// Price accepts a JSON number or a numeric string.
type ProductInputDto struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductInputDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, toInput(product))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.announce(ctx, events.ProductCreated, p.ID, p)
	return toDto(p), nil
}

// Update replaces an existing product's details and returns the updated product as a ProductDto.
func (s *Service) Update(ctx context.Context, id int64, product ProductInputDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, id, toInput(product))
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}

	s.announce(ctx, events.ProductUpdated, id, updated)
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	s.announce(ctx, events.ProductDeleted, id, nil)
	return nil
}

// announce records the change and publishes it. A failed publish is logged and never fails the request.
func (s *Service) announce(ctx context.Context, action events.ProductAction, id int64, product *store.Product) {
	s.changesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(action))))

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.ProductChangedEvent{
		Action:     action,
		ProductID:  id,
		OccurredAt: time.Now().UTC(),
		Carrier:    carrier,
	}
	if product != nil {
		event.Name = product.Name
		event.Price = product.Price
		event.Category = product.Category
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish product event", "action", action, "ID", id, "error", err)
	}
}

func toInput(product ProductInputDto) store.ProductInput {
	return store.ProductInput{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
	}
}
