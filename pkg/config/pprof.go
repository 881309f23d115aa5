package config

import (
	"fmt"
	"net"
)

// PProfConfig controls the profiling listener, served on its own address next to the catalog port.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	return fmt.Sprintf("  pprof.enabled: %t\n  pprof.address: %s\n", c.Enabled, c.Addr)
}

// Validate requires a host:port address once profiling is switched on.
func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("pprof.addr is required when pprof is enabled")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof.addr %q: %w", c.Addr, err)
	}
	return nil
}
