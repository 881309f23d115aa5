package config

import (
	"fmt"
	"strings"
	"time"
)

// NATSConfig controls publishing of product change events to a JetStream stream.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
}

func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Events ---\n")
	fmt.Fprintf(&b, "  nats.enabled: %t\n", c.Enabled)
	fmt.Fprintf(&b, "  nats.url: %s\n", c.Url)
	fmt.Fprintf(&b, "  nats.timeout: %s\n", c.Timeout)
	fmt.Fprintf(&b, "  nats.stream: %s\n", c.Stream)
	return b.String()
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	if c.Stream == "" {
		return fmt.Errorf("nats stream is not configured")
	}
	return nil
}
