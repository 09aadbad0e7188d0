// Package config handles global bindery configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the global bindery configuration: named bundle directories
// plus a default.
type Config struct {
	// DefaultBundle is the name of the bundle used when none is given.
	DefaultBundle string `toml:"default_bundle"`

	// Bundles maps bundle names to directories.
	Bundles map[string]string `toml:"bundles"`
}

// BundlePath returns the directory for a named bundle. An empty name
// selects the default bundle.
func (c *Config) BundlePath(name string) (string, error) {
	if name == "" {
		name = c.DefaultBundle
	}
	if name == "" {
		return "", fmt.Errorf("no bundle specified and no default_bundle configured")
	}
	if path, ok := c.Bundles[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("bundle '%s' not found in config", name)
}

// ListBundles returns all configured bundles with their directories.
func (c *Config) ListBundles() map[string]string {
	out := make(map[string]string, len(c.Bundles))
	for name, path := range c.Bundles {
		out[name] = path
	}
	return out
}

// Load loads the configuration from the default location. A missing
// file yields an empty config, not an error.
func Load() (*Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPath returns the default config file path, preferring the
// XDG-style ~/.config/bindery/config.toml.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "bindery", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "bindery", "config.toml")
	}
	return filepath.Join(".", "config.toml")
}

// CreateDefault creates a commented starter config if none exists and
// returns its path.
func CreateDefault() (string, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	starter := `# bindery configuration

# Default bundle name (must exist in [bundles] below)
# default_bundle = "product"

# Named bundles
# [bundles]
# product = "/path/to/product-bundle"
# platform = "/path/to/platform-bundle"
`
	if err := os.WriteFile(path, []byte(starter), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
