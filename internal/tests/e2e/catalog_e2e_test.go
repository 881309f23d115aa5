// Package e2e runs the whole catalog against a real JSON document in a temporary directory.
// Every test gets a freshly seeded document and its own httptest.Server; the pages reach the
// API of that same server through the real HTTP client, exactly as in production.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/gocatalog/internal/app"
	"github.com/abgdnv/gocatalog/internal/client"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/pkg/config"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/messaging/events"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "CATALOG_SKIP_E2E_TESTS"

const productURL = "/api/products"

// recordingPublisher keeps the actions of the published product events.
type recordingPublisher struct {
	mu      sync.Mutex
	actions []events.ProductAction
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, event.(events.ProductChangedEvent).Action)
	return nil
}

func (p *recordingPublisher) Actions() []events.ProductAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.actions)
}

type CatalogE2ESuite struct {
	suite.Suite
	store      *store.JSONStore
	publisher  *recordingPublisher
	server     *httptest.Server
	httpClient *http.Client
	logger     *slog.Logger
	ctx        context.Context
}

func TestCatalogE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(CatalogE2ESuite))
}

func (s *CatalogE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTest seeds a new document and starts a server whose pages call back into itself.
func (s *CatalogE2ESuite) SetupTest() {
	s.store = store.NewJSONStore(filepath.Join(s.T().TempDir(), "data", "products.json"))
	created, err := s.store.Initialize(s.ctx)
	require.NoError(s.T(), err)
	require.True(s.T(), created)

	// the listener exists before Start, so the pages can be pointed at the server they are served from
	s.server = httptest.NewUnstartedServer(nil)
	apiClient := client.New("http://"+s.server.Listener.Addr().String(), config.ClientConfig{
		Timeout: 5 * time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			ConsecutiveFailures: 5,
			ErrorRatePercent:    60,
			OpenTimeout:         10 * time.Second,
		},
	})
	s.publisher = &recordingPublisher{}
	deps := app.SetupDependencies(s.store, apiClient, s.publisher, s.logger)
	deps.MetricsPath = "/metrics"
	deps.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "# metrics\n")
	})
	handler, err := app.SetupHttpHandler(deps)
	require.NoError(s.T(), err)
	s.server.Config.Handler = handler
	s.server.Start()

	s.httpClient = s.server.Client()
	s.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
}

func (s *CatalogE2ESuite) TearDownTest() {
	s.server.Close()
}

func (s *CatalogE2ESuite) Test_SeededCatalog() {
	products, status := s.findAll()

	s.Equal(http.StatusOK, status)
	s.Require().Len(products, 3)
	s.Equal(service.ProductDto{
		ID:          1,
		Name:        "Laptop Pro",
		Description: "Powerful laptop for professionals",
		Price:       1299.99,
		Category:    "electronics",
	}, products[0])
	s.Equal("Coffee Maker", products[2].Name)
}

func (s *CatalogE2ESuite) Test_ProductLifecycle() {
	// create
	body, status := s.doRequest(http.MethodPost, productURL, map[string]any{
		"name": "  Desk Lamp ", "description": "LED", "price": 10.5, "category": "home",
	})
	s.Require().Equal(http.StatusCreated, status, string(body))
	created := s.decodeProduct(body)
	s.Equal(int64(4), created.ID)
	s.Equal("Desk Lamp", created.Name)
	s.Equal(10.5, created.Price)

	// read
	body, status = s.doRequest(http.MethodGet, productURL+"/4", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(created, s.decodeProduct(body))

	// update, price given as a string
	body, status = s.doRequest(http.MethodPut, productURL+"/4", map[string]any{
		"name": "Desk Lamp XL", "description": "", "price": "12.00", "category": "home",
	})
	s.Require().Equal(http.StatusOK, status, string(body))
	s.Equal(service.ProductDto{ID: 4, Name: "Desk Lamp XL", Price: 12, Category: "home"}, s.decodeProduct(body))

	// delete
	_, status = s.doRequest(http.MethodDelete, productURL+"/4", nil)
	s.Equal(http.StatusNoContent, status)

	body, status = s.doRequest(http.MethodGet, productURL+"/4", nil)
	s.Equal(http.StatusNotFound, status)
	s.Equal("Product with ID 4 not found", s.decodeError(body).Message)

	_, status = s.doRequest(http.MethodDelete, productURL+"/4", nil)
	s.Equal(http.StatusNotFound, status)

	s.Equal([]events.ProductAction{events.ProductCreated, events.ProductUpdated, events.ProductDeleted}, s.publisher.Actions())
}

func (s *CatalogE2ESuite) Test_Persistence() {
	_, status := s.doRequest(http.MethodPost, productURL, map[string]any{
		"name": "Notebook", "price": 3, "category": "office",
	})
	s.Require().Equal(http.StatusCreated, status)

	// a second store on the same document sees the write
	reopened := store.NewJSONStore(s.store.Path())
	created, err := reopened.Initialize(s.ctx)
	s.Require().NoError(err)
	s.False(created)
	products, err := reopened.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(products, 4)

	raw, err := os.ReadFile(s.store.Path())
	s.Require().NoError(err)
	s.Contains(string(raw), "\n  \"products\": [")
	s.Contains(string(raw), `"name": "Notebook"`)
}

func (s *CatalogE2ESuite) Test_Validation() {
	testCases := []struct {
		name          string
		payload       map[string]any
		expectedField string
	}{
		{name: "zero price", payload: map[string]any{"name": "A", "price": 0, "category": "c"}, expectedField: "price"},
		{name: "negative price", payload: map[string]any{"name": "A", "price": -5, "category": "c"}, expectedField: "price"},
		{name: "missing price", payload: map[string]any{"name": "A", "category": "c"}, expectedField: "price"},
		{name: "blank name", payload: map[string]any{"name": "   ", "price": 1, "category": "c"}, expectedField: "name"},
		{name: "missing category", payload: map[string]any{"name": "A", "price": 1}, expectedField: "category"},
		{name: "price beyond float range", payload: map[string]any{"name": "A", "price": json.RawMessage("1e400"), "category": "c"}, expectedField: "price"},
		{name: "price string beyond float range", payload: map[string]any{"name": "A", "price": "1e400", "category": "c"}, expectedField: "price"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			body, status := s.doRequest(http.MethodPost, productURL, tc.payload)
			s.Equal(http.StatusBadRequest, status)
			errResp := s.decodeError(body)
			s.Equal("Validation failed", errResp.Message)
			s.Contains(errResp.ValidationErrors, tc.expectedField)
		})
	}

	products, _ := s.findAll()
	s.Len(products, 3, "rejected input must not be stored")
	s.Empty(s.publisher.Actions())
}

func (s *CatalogE2ESuite) Test_BadRequests() {
	testCases := []struct {
		name           string
		method         string
		path           string
		rawBody        string
		expectedStatus int
	}{
		{name: "non numeric id", method: http.MethodGet, path: productURL + "/abc", expectedStatus: http.StatusBadRequest},
		{name: "zero id", method: http.MethodDelete, path: productURL + "/0", expectedStatus: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: productURL, rawBody: "{", expectedStatus: http.StatusBadRequest},
		{name: "unknown api path", method: http.MethodGet, path: "/api/orders", expectedStatus: http.StatusNotFound},
		{name: "unsupported method", method: http.MethodPatch, path: productURL + "/1", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req, err := http.NewRequestWithContext(s.ctx, tc.method, s.server.URL+tc.path, strings.NewReader(tc.rawBody))
			s.Require().NoError(err)
			resp, err := s.httpClient.Do(req)
			s.Require().NoError(err)
			defer resp.Body.Close()

			s.Equal(tc.expectedStatus, resp.StatusCode)
			s.Equal("application/json", resp.Header.Get("Content-Type"))
		})
	}
}

func (s *CatalogE2ESuite) Test_RequestID() {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.server.URL+"/healthz", nil)
	s.Require().NoError(err)
	req.Header.Set(web.RequestIDHeader, "e2e-trace-1")

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("e2e-trace-1", resp.Header.Get(web.RequestIDHeader))
}

func (s *CatalogE2ESuite) Test_Metrics() {
	body, status := s.getPage("/metrics")
	s.Equal(http.StatusOK, status)
	s.Equal("# metrics\n", body)
}

func (s *CatalogE2ESuite) Test_Pages() {
	// list renders the seeded products through the API
	page, status := s.getPage("/products?category=electronics")
	s.Equal(http.StatusOK, status)
	s.Contains(page, "Laptop Pro")
	s.Contains(page, "$799.99")
	s.NotContains(page, "Coffee Maker")

	// create through the form
	resp := s.postForm("/products", url.Values{
		"name": {"Kettle"}, "description": {"Steel"}, "price": {"25"}, "category": {"home"},
	})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/products", resp.Header.Get("Location"))

	page, _ = s.getPage("/products/4")
	s.Contains(page, "Kettle")
	s.Contains(page, "$25.00")

	// invalid price from the API is shown on the form
	resp = s.postForm("/products/4", url.Values{"name": {"Kettle"}, "price": {"-1"}, "category": {"home"}})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	// delete through the form
	resp = s.postForm("/products/4/delete", url.Values{})
	s.Equal(http.StatusSeeOther, resp.StatusCode)

	_, status = s.getPage("/products/4")
	s.Equal(http.StatusNotFound, status)
	_, status = s.getPage("/no/such/page")
	s.Equal(http.StatusNotFound, status)
}

// --------------------------------------------------------------------------
// ---------------------------- Helper methods ------------------------------
// --------------------------------------------------------------------------

func (s *CatalogE2ESuite) findAll() ([]service.ProductDto, int) {
	s.T().Helper()
	body, status := s.doRequest(http.MethodGet, productURL, nil)
	var products []service.ProductDto
	if status == http.StatusOK {
		s.Require().NoError(json.Unmarshal(body, &products), "Failed to decode product list")
	}
	return products, status
}

// doRequest sends a JSON request and returns the response body and status code.
func (s *CatalogE2ESuite) doRequest(method, path string, payload any) ([]byte, int) {
	s.T().Helper()
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, body)
	s.Require().NoError(err, "Failed to create HTTP request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err, "HTTP request failed")
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err, "Failed to read response body")
	return bodyBytes, resp.StatusCode
}

func (s *CatalogE2ESuite) getPage(path string) (string, int) {
	s.T().Helper()
	resp, err := s.httpClient.Get(s.server.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return string(body), resp.StatusCode
}

func (s *CatalogE2ESuite) postForm(path string, values url.Values) *http.Response {
	s.T().Helper()
	resp, err := s.httpClient.PostForm(s.server.URL+path, values)
	s.Require().NoError(err)
	_, _ = io.Copy(io.Discard, resp.Body)
	s.Require().NoError(resp.Body.Close())
	return resp
}

func (s *CatalogE2ESuite) decodeProduct(body []byte) service.ProductDto {
	s.T().Helper()
	var p service.ProductDto
	s.Require().NoError(json.Unmarshal(body, &p), "Failed to decode product")
	return p
}

func (s *CatalogE2ESuite) decodeError(body []byte) web.ErrorResponse {
	s.T().Helper()
	var e web.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &e), "Failed to decode error response")
	return e
}
