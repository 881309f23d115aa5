package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/gocatalog/pkg/config"
	"github.com/abgdnv/gocatalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Storage    config.StorageConfig   `koanf:"storage"`
	Client     config.ClientConfig    `koanf:"client"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
	Nats       config.NATSConfig      `koanf:"nats"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
}

// Defaults are applied before config.yaml, .env and the environment.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               3001,
		"server.maxHeaderBytes":     1 << 20,
		"server.timeout.read":       "10s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readHeader": "5s",

		"storage.dir":  "data",
		"storage.file": "products.json",

		"client.baseurl":                            "",
		"client.timeout":                            "5s",
		"client.circuitbreaker.consecutivefailures": 5,
		"client.circuitbreaker.errorratepercent":    60,
		"client.circuitbreaker.opentimeout":         "10s",

		"log.level": "info",

		"pprof.enabled": false,
		"pprof.addr":    ":6060",

		"telemetry.traces.enabled":           false,
		"telemetry.traces.otlphttp.endpoint": "localhost:4318",
		"telemetry.traces.otlphttp.insecure": true,
		"telemetry.traces.otlphttp.timeout":  "5s",
		"telemetry.metrics.enabled":          true,
		"telemetry.metrics.path":             "/metrics",

		"nats.enabled": false,
		"nats.url":     "nats://localhost:4222",
		"nats.timeout": "5s",
		"nats.stream":  "CATALOG",

		"shutdown.timeout": "15s",
	}
}

// String prints every section with its fully qualified keys. The client base URL is the resolved one.
func (c *Config) String() string {
	client := c.Client
	client.BaseURL = c.APIBaseURL()
	sections := []fmt.Stringer{&c.HTTPServer, &c.Storage, &client, &c.Log, &c.PProf, &c.Telemetry, &c.Nats, &c.Shutdown}

	var b strings.Builder
	for _, section := range sections {
		b.WriteString(section.String())
	}
	return b.String()
}

// APIBaseURL is where the pages reach the product API. Without an explicit
// client.baseurl it is the API served by this process.
func (c *Config) APIBaseURL() string {
	if c.Client.BaseURL != "" {
		return c.Client.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", c.HTTPServer.Port)
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Client.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
