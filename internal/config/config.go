// Package config provides unified configuration loading for accord.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// AccordConfig contains all accord configuration settings.
type AccordConfig struct {
	// Logging contains settings for operational and step-trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store contains settings for the run store.
	Store StoreConfig `json:"store" yaml:"store"`

	// Simulation contains default simulation parameters.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// LoggingConfig configures accord's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "trace" enables step-trace logging to <trace_dir>/steps.jsonl.
	Level string `json:"level" yaml:"level" env:"ACCORD_LOG_LEVEL"`

	// TraceDir is the directory the step-trace writer logs into.
	// Defaults to ~/.accord.
	TraceDir string `json:"trace_dir,omitempty" yaml:"trace_dir,omitempty" env:"ACCORD_TRACE_DIR"`
}

// StoreConfig configures the SQLite run store.
type StoreConfig struct {
	// Path is the database file. Defaults to ~/.accord/accord.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty" env:"ACCORD_DB_PATH"`
}

// SimulationConfig holds defaults applied when a command or tool call
// omits the corresponding option.
type SimulationConfig struct {
	// Steps is the default simulation length.
	Steps int `json:"steps" yaml:"steps" env:"ACCORD_STEPS"`

	// Replications is the default validation batch size.
	Replications int `json:"replications" yaml:"replications" env:"ACCORD_REPLICATIONS"`
}

// Default returns an AccordConfig with sensible defaults.
func Default() *AccordConfig {
	return &AccordConfig{
		Logging: LoggingConfig{
			Level: "info",
		},
		Simulation: SimulationConfig{
			Steps:        200,
			Replications: 100,
		},
	}
}

// Load loads configuration from the default locations and environment
// variables. Order: defaults -> ~/.accord/config.yaml -> environment.
func Load() (*AccordConfig, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".accord", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	config.applyFallbacks()
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*AccordConfig, error) {
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

// applyFallbacks fills paths that depend on the home directory.
func (c *AccordConfig) applyFallbacks() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(homeDir, ".accord", "accord.db")
	}
	if c.Logging.TraceDir == "" {
		c.Logging.TraceDir = filepath.Join(homeDir, ".accord")
	}
}

// Validate checks that the configuration is valid.
func (c *AccordConfig) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Simulation.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Simulation.Steps)
	}
	if c.Simulation.Replications <= 0 {
		return fmt.Errorf("replications must be positive, got %d", c.Simulation.Replications)
	}

	return nil
}
