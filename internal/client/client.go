// Package client is an HTTP client for the product API.
// The HTML pages use it to reach the API exactly like any external caller would.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abgdnv/gocatalog/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const productsPath = "/api/products"

// Product is a product as returned by the API.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// ProductInput is the payload for creating or updating a product.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// APIError is returned for any non-2xx answer of the API.
type APIError struct {
	StatusCode       int
	Message          string
	ValidationErrors map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("product API returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorBody mirrors web.ErrorResponse.
type errorBody struct {
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validation_errors"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

// New creates a client for the API served at baseURL.
// Requests carry the trace context of the caller.
func New(baseURL string, cfg config.ClientConfig) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: newCircuitBreaker(cfg.CircuitBreaker),
	}
}

// newCircuitBreaker trips on transport errors and 5xx answers only; 4xx answers are the caller's fault.
func newCircuitBreaker(cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[*http.Response] {
	st := gobreaker.Settings{
		Name:        "product-api-cb",
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return false
		},
	}
	return gobreaker.NewCircuitBreaker[*http.Response](st)
}

// ListProducts returns every product.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, productsPath, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns a single product; a missing product yields an *APIError with status 404.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct creates a product and returns it with its assigned id.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPost, productsPath, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct replaces all fields of the product except its id.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPut, productPath(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes the product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil)
}

func productPath(id int64) string {
	return fmt.Sprintf("%s/%d", productsPath, id)
}

// do sends the request through the circuit breaker and decodes a 2xx body into out, when out is not nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to call product API: %w", err)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			defer resp.Body.Close()
			return nil, decodeError(resp)
		}
		return resp, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		}
		apiErr.ValidationErrors = body.ValidationErrors
	}
	return apiErr
}
