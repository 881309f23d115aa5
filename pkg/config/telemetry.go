package config

import (
	"fmt"
	"strings"
	"time"
)

type TelemetryConfig struct {
	Traces  TracesConfig  `koanf:"traces"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// TracesConfig controls span export over OTLP/HTTP. With Enabled false spans are still
// propagated between the pages and the API but never exported.
type TracesConfig struct {
	Enabled  bool           `koanf:"enabled"`
	OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func (c *TelemetryConfig) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  telemetry.traces.enabled: %t\n", c.Traces.Enabled)
	fmt.Fprintf(&b, "  telemetry.traces.otlphttp.endpoint: %s\n", c.Traces.OtlpHttp.Endpoint)
	fmt.Fprintf(&b, "  telemetry.metrics.enabled: %t\n", c.Metrics.Enabled)
	fmt.Fprintf(&b, "  telemetry.metrics.path: %s\n", c.Metrics.Path)
	return b.String()
}

func (c *TelemetryConfig) Validate() error {
	if c.Traces.Enabled {
		if c.Traces.OtlpHttp.Endpoint == "" {
			return fmt.Errorf("OTel endpoint is not configured")
		}
		if c.Traces.OtlpHttp.Timeout <= 0 {
			return fmt.Errorf("telemetry timeout must be greater than 0")
		}
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}
	return nil
}
