// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	producterrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds the size of create and update payloads.
const maxBodyBytes = 1 << 20

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.NotFound(h.NotFound)
		r.MethodNotAllowed(h.MethodNotAllowed)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.FindAll)
			r.Post("/", h.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindByID)
				r.Put("/", h.Update)
				r.Delete("/", h.DeleteByID)
			})
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// FindAll retrieves the whole product list.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product", "product", input)

	newProduct, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, err, 0, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, newProduct)
}

// Update replaces all fields of a product except its ID.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// NotFound answers unknown API paths with a JSON 404.
func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	web.RespondError(w, h.logger, http.StatusNotFound, "Resource not found")
}

// MethodNotAllowed answers known API paths requested with an unsupported method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	web.RespondError(w, h.logger, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", r.Method))
}

// decodeInput reads the product payload. On failure it writes a 400 and returns false.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (service.ProductInputDto, bool) {
	var input service.ProductInputDto
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return input, false
	}
	return input, true
}

// respondServiceError maps service errors onto status codes: validation 400, not found 404, anything else 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, id int64, internalMsg string) {
	var validationErr *producterrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Fields)
		web.RespondValidationError(w, h.logger, validationErr.Fields)
	case errors.Is(err, producterrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
	default:
		h.logger.ErrorContext(r.Context(), internalMsg, "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, internalMsg)
	}
}
