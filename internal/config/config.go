// Package config provides the YAML-backed application configuration with
// sensible defaults for every field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from YAML.
type Config struct {
	// Scheme is the active segmentation scheme, "9-segment" or "4-segment".
	Scheme string `yaml:"scheme"`

	Transfer struct {
		// Mode is the default cross-series transfer mode when the caller
		// does not pick one: "registered" or "unregistered".
		Mode string `yaml:"mode"`
	} `yaml:"transfer"`

	Snapshot struct {
		// MaxDim caps the longer edge of overlay snapshots, in pixels.
		// Zero disables scaling.
		MaxDim int `yaml:"maxDim"`

		// Window and Level override the series' own display window when
		// both are non-zero.
		Window float64 `yaml:"window"`
		Level  float64 `yaml:"level"`
	} `yaml:"snapshot"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{Scheme: "9-segment"}
	cfg.Transfer.Mode = "registered"
	cfg.Snapshot.MaxDim = 1024
	return cfg
}

// Load reads a YAML configuration file on top of the defaults. Fields the
// file omits keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}
