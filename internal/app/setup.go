// Package app contains the application setup for the catalog.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocatalog/internal/config"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/internal/transport/pages"
	"github.com/abgdnv/gocatalog/internal/transport/rest"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// operationName names the server spans.
const operationName = "catalog.http"

type Dependencies struct {
	ProductService service.ProductService
	Catalog        pages.Catalog
	Logger         *slog.Logger

	// MetricsHandler, when set, is served at MetricsPath.
	MetricsHandler http.Handler
	MetricsPath    string
}

// SetupDependencies builds the service on top of the store. catalog is what the pages use to reach the API,
// publisher receives the product change events.
func SetupDependencies(productStore store.ProductStore, catalog pages.Catalog, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(productStore, publisher),
		Catalog:        catalog,
		Logger:         logger,
	}
}

// SetupHttpHandler builds the router serving both the JSON API and the HTML pages, wrapped in a server span.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) (http.Handler, error) {
	mux := server.NewChiRouter(deps.Logger)
	if err := wireRoutes(mux, deps); err != nil {
		return nil, err
	}
	return otelhttp.NewHandler(mux, operationName), nil
}

// wireRoutes sets up the HTTP routes. Paths no route claims get the HTML 404 page, except under /api.
func wireRoutes(mux *chi.Mux, deps *Dependencies) error {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)

	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}

	pageHandler, err := pages.NewHandler(deps.Catalog, deps.Logger)
	if err != nil {
		return err
	}
	pageHandler.RegisterRoutes(mux)
	mux.NotFound(pageHandler.NotFound)
	return nil
}

// SetupHttpServer creates and configures the HTTP server for the catalog.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) (*http.Server, error) {
	mux, err := SetupHttpHandler(deps)
	if err != nil {
		return nil, err
	}

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux), nil
}
