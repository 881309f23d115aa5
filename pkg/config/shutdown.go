package config

import (
	"fmt"
	"strings"
	"time"
)

// maxShutdownTimeout caps how long in-flight requests, the tracer flush and the NATS drain may hold the process.
const maxShutdownTimeout = 5 * time.Minute

// ShutdownConfig bounds each graceful stop step.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Application Behavior ---\n")
	fmt.Fprintf(&b, "  shutdown.timeout: %s\n", c.Timeout)
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("shutdown.timeout must be positive, got %s", c.Timeout)
	case c.Timeout > maxShutdownTimeout:
		return fmt.Errorf("shutdown.timeout %s exceeds %s", c.Timeout, maxShutdownTimeout)
	}
	return nil
}
