// Package pages serves the HTML front end of the catalog.
// Pages never touch the store; they go through the product API like any other caller.
package pages

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/abgdnv/gocatalog/internal/client"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

// Catalog is the subset of the API client the pages need.
type Catalog interface {
	ListProducts(ctx context.Context) ([]client.Product, error)
	GetProduct(ctx context.Context, id int64) (*client.Product, error)
	CreateProduct(ctx context.Context, in client.ProductInput) (*client.Product, error)
	UpdateProduct(ctx context.Context, id int64, in client.ProductInput) (*client.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type Handler struct {
	catalog   Catalog
	templates map[string]*template.Template
	logger    *slog.Logger
}

type listPage struct {
	Title      string
	Products   []client.Product
	Categories []string
	Search     string
	Category   string
}

type productPage struct {
	Title   string
	Product *client.Product
}

type formPage struct {
	Title string
	Form  productForm
}

type errorPage struct {
	Title   string
	Status  int
	Message string
}

// NewHandler parses the embedded templates and returns a handler serving them.
func NewHandler(catalog Catalog, logger *slog.Logger) (*Handler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		catalog:   catalog,
		templates: templates,
		logger:    logger.With("component", "pages"),
	}, nil
}

// RegisterRoutes registers the HTML pages and the static assets.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Handle("/static/*", staticHandler())

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/new", h.New)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Post("/", h.Update)
			r.Get("/edit", h.Edit)
			r.Post("/delete", h.Delete)
		})
	})
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageHome, productPage{Title: "Home"})
}

// List shows all products, optionally narrowed by name search and category.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to load products")
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	h.render(w, r, http.StatusOK, pageIndex, listPage{
		Title:      "Products",
		Products:   filterProducts(products, search, category),
		Categories: categories(products),
		Search:     search,
		Category:   category,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, pageShow, productPage{Title: p.Name, Product: p})
}

func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageForm, formPage{
		Title: "Add Product",
		Form:  productForm{Action: "/products", Cancel: "/products", Errors: map[string]string{}},
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := formFromRequest(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}
	form.Action, form.Cancel = "/products", "/products"

	in, ok := form.input()
	if !ok {
		h.render(w, r, http.StatusBadRequest, pageForm, formPage{Title: "Add Product", Form: form})
		return
	}
	created, err := h.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		if h.rejectForm(w, r, err, &form, "Add Product") {
			return
		}
		h.fail(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created from form", "ID", created.ID)
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	form := formFromProduct(p)
	form.Action = fmt.Sprintf("/products/%d", p.ID)
	form.Cancel = form.Action
	h.render(w, r, http.StatusOK, pageForm, formPage{Title: "Edit Product", Form: form})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	form, err := formFromRequest(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}
	form.Action = fmt.Sprintf("/products/%d", id)
	form.Cancel = form.Action

	in, ok := form.input()
	if !ok {
		h.render(w, r, http.StatusBadRequest, pageForm, formPage{Title: "Edit Product", Form: form})
		return
	}
	if _, err := h.catalog.UpdateProduct(r.Context(), id, in); err != nil {
		if h.rejectForm(w, r, err, &form, "Edit Product") {
			return
		}
		h.fail(w, r, err, "Failed to update product")
		return
	}
	http.Redirect(w, r, form.Action, http.StatusSeeOther)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, r, err, "Failed to delete product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted from page", "ID", id)
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found")
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := web.ParsePositiveInt(r.PathValue("id"))
	if !ok {
		h.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func (h *Handler) loadProduct(w http.ResponseWriter, r *http.Request) (*client.Product, bool) {
	id, ok := h.parseID(w, r)
	if !ok {
		return nil, false
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to load product")
		return nil, false
	}
	return p, true
}

// rejectForm re-renders the form when the API refused the input. It reports whether it wrote a response.
func (h *Handler) rejectForm(w http.ResponseWriter, r *http.Request, err error, form *productForm, title string) bool {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		return false
	}
	form.reject(apiErr)
	h.render(w, r, http.StatusBadRequest, pageForm, formPage{Title: title, Form: *form})
	return true
}

// fail renders the 404 page for a missing product and a 500 page for anything else.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if client.IsNotFound(err) {
		h.renderError(w, r, http.StatusNotFound, "Product not found")
		return
	}
	h.logger.ErrorContext(r.Context(), msg, "error", err)
	h.renderError(w, r, http.StatusInternalServerError, msg)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, r, status, pageError, errorPage{Title: http.StatusText(status), Status: status, Message: msg})
}

func filterProducts(products []client.Product, search, category string) []client.Product {
	search = strings.ToLower(search)
	category = strings.ToLower(category)
	filtered := make([]client.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// categories returns the distinct categories in sorted order.
func categories(products []client.Product) []string {
	var cats []string
	for _, p := range products {
		if !slices.Contains(cats, p.Category) {
			cats = append(cats, p.Category)
		}
	}
	slices.Sort(cats)
	return cats
}
