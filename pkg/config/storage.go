package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// StorageConfig locates the JSON document holding the product collection.
type StorageConfig struct {
	Dir  string `koanf:"dir"`
	File string `koanf:"file"`
}

// Path returns the full path of the document.
func (c *StorageConfig) Path() string {
	return filepath.Join(c.Dir, c.File)
}

func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	fmt.Fprintf(&b, "  storage.path: %s\n", c.Path())
	return b.String()
}

func (c *StorageConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("storage directory is not configured")
	}
	if c.File == "" {
		return fmt.Errorf("storage file is not configured")
	}
	if filepath.Base(c.File) != c.File {
		return fmt.Errorf("storage file must be a plain file name: %s", c.File)
	}
	return nil
}
