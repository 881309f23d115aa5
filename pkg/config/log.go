package config

import (
	"fmt"
	"slices"
	"strings"
)

// logLevels are the names bootstrap.NewLogger understands. Empty means info.
var logLevels = []string{"", "debug", "info", "warn", "error"}

type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	level := c.Level
	if level == "" {
		level = "info"
	}
	return fmt.Sprintf("\n--- Observability & Logging ---\n  log.level: %s\n", level)
}

func (c *LogConfig) Validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.Level)) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Level)
	}
	return nil
}
