// Package config provides configuration loading for the neurograph CLI.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config contains all CLI configuration settings.
type Config struct {
	// Store contains settings for snapshot persistence.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Simulation contains defaults applied when flags are not given.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// StoreConfig configures the snapshot store backend.
type StoreConfig struct {
	// Kind selects the backend: "memory" (default) or "sqlite".
	Kind string `json:"kind" yaml:"kind"`

	// Path is the sqlite database file path. Ignored by the memory backend.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "error", "warn", "info" (default), "debug".
	Level string `json:"level" yaml:"level"`
}

// SimulationConfig carries simulation defaults.
type SimulationConfig struct {
	// DT is the default time step.
	DT float64 `json:"dt" yaml:"dt"`

	// ApplySTDP enables plasticity updates during stepping.
	ApplySTDP bool `json:"apply_stdp" yaml:"apply_stdp"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Kind: "memory",
			Path: "neurograph.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Simulation: SimulationConfig{
			DT: 1.0,
		},
	}
}

// Load loads configuration from an optional YAML file and environment
// variables. Order: defaults -> path (if non-empty and present) -> env.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("loading config file: %w", err)
			}
			config = loaded
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	validKinds := map[string]bool{"": true, "memory": true, "sqlite": true}
	if !validKinds[c.Store.Kind] {
		return fmt.Errorf("invalid store kind: %s (valid: memory, sqlite, or empty for default)", c.Store.Kind)
	}

	validLevels := map[string]bool{"": true, "error": true, "warn": true, "info": true, "debug": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, or empty for default)", c.Logging.Level)
	}

	if c.Simulation.DT < 0 {
		return fmt.Errorf("dt must be non-negative, got %f", c.Simulation.DT)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("NEUROGRAPH_STORE_KIND"); v != "" {
		config.Store.Kind = v
	}
	if v := os.Getenv("NEUROGRAPH_DB_PATH"); v != "" {
		config.Store.Path = v
	}
	if v := os.Getenv("NEUROGRAPH_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("NEUROGRAPH_DT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.DT = f
		}
	}
	if v := os.Getenv("NEUROGRAPH_APPLY_STDP"); v != "" {
		config.Simulation.ApplySTDP = v == "true" || v == "1"
	}
}
