package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ClientConfig configures the HTTP client the pages use to reach the product API.
// An empty BaseURL means the API is served by this process.
type ClientConfig struct {
	BaseURL        string               `koanf:"baseurl"`
	Timeout        time.Duration        `koanf:"timeout"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *ClientConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Product API Client ---\n")
	fmt.Fprintf(&b, "  client.baseurl: %s\n", c.BaseURL)
	fmt.Fprintf(&b, "  client.timeout: %s\n", c.Timeout)
	fmt.Fprintf(&b, "  client.circuitbreaker.consecutivefailures: %d\n", c.CircuitBreaker.ConsecutiveFailures)
	fmt.Fprintf(&b, "  client.circuitbreaker.errorratepercent: %d\n", c.CircuitBreaker.ErrorRatePercent)
	fmt.Fprintf(&b, "  client.circuitbreaker.opentimeout: %s\n", c.CircuitBreaker.OpenTimeout)
	return b.String()
}

func (c *ClientConfig) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("client.baseurl must be an absolute http(s) URL: %s", c.BaseURL)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("client timeout is not configured")
	}
	if c.CircuitBreaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0")
	}
	if c.CircuitBreaker.ErrorRatePercent < 0 || c.CircuitBreaker.ErrorRatePercent > 100 {
		return fmt.Errorf("circuitbreaker.errorratepercent must be between 0 and 100")
	}
	if c.CircuitBreaker.OpenTimeout <= 0 {
		return fmt.Errorf("circuitbreaker.opentimeout must be greater than 0")
	}
	return nil
}
