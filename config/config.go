// Package config loads and validates the YAML configuration for a dalmesh
// DataManager: logging output, pipeline defaults and metrics exposure.
// Programmatic construction via dalmesh.Options does not require this
// package; it exists for binaries that configure the library from files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/dalmesh/logging"
)

// Config is the complete library configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LoggingConfig controls the structured logger built for the DataManager.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
	// AddSource includes source positions in log records.
	AddSource bool `yaml:"add_source"`
}

// PipelineConfig controls middleware pipeline construction.
type PipelineConfig struct {
	// DisableDefaults drops the default interceptors (the path resolver).
	// Only set this when supplying a replacement resolver.
	DisableDefaults bool `yaml:"disable_defaults"`
}

// MetricsConfig controls the Prometheus interceptor.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the baseline configuration: info-level JSON logging,
// default middleware enabled, metrics off.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Namespace: "dalmesh"},
	}
}

// Parse unmarshals YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("dalmesh: parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dalmesh: reading config %q: %w", path, err)
	}
	return Parse(data)
}

// Validate rejects unknown enum values.
func (c *Config) Validate() error {
	if _, err := c.Logging.logLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "text", "":
	default:
		return fmt.Errorf("dalmesh: unknown log format %q (want json or text)", c.Logging.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("dalmesh: metrics namespace must be non-empty when metrics are enabled")
	}
	return nil
}

// LoggerConfig translates the logging section for logging.New.
func (c *Config) LoggerConfig() *logging.Config {
	level, _ := c.Logging.logLevel()
	return &logging.Config{
		Level:     level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.AddSource,
	}
}

func (c LoggingConfig) logLevel() (logging.LogLevel, error) {
	switch c.Level {
	case "debug":
		return logging.LogLevelDebug, nil
	case "info", "":
		return logging.LogLevelInfo, nil
	case "warn":
		return logging.LogLevelWarn, nil
	case "error":
		return logging.LogLevelError, nil
	default:
		return logging.LogLevelInfo, fmt.Errorf("dalmesh: unknown log level %q", c.Level)
	}
}
