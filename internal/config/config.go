// Package config loads the optional linewise config file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"linewise/pkg/linereader"
)

// Config holds tool-wide settings. Values from a config file overlay the
// defaults; command line flags overlay both.
type Config struct {
	// ChunkSize is the number of bytes requested per underlying read.
	ChunkSize int `yaml:"chunk_size"`
	// Color is one of "auto", "always" or "never".
	Color string `yaml:"color"`
	// Listen is the address the serve command binds to.
	Listen string `yaml:"listen"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ChunkSize: linereader.DefaultChunkSize,
		Color:     "auto",
		Listen:    ":8080",
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen must not be empty")
	}
	return nil
}
