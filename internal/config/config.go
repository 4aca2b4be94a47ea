// Package config provides unified configuration loading for boolnet.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/boolnet/internal/sensitivity"
	"github.com/nvandessel/boolnet/internal/store"
)

// BoolnetConfig contains all boolnet configuration settings.
type BoolnetConfig struct {
	// Engine tunes the sensitivity analysis engine.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Store selects where analysis reports are persisted.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains settings for operational and analysis trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Metrics configures the Prometheus textfile export.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// EngineConfig mirrors sensitivity.Config.
type EngineConfig struct {
	// Workers bounds parallel ensemble evaluation. 0 means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers"`

	// PrecomputeTransitions builds the full transition table before an
	// ensemble analysis when the network is small enough.
	PrecomputeTransitions bool `json:"precompute_transitions" yaml:"precompute_transitions"`

	// MaxExhaustiveSize is the largest network enumerated state by state.
	MaxExhaustiveSize int `json:"max_exhaustive_size" yaml:"max_exhaustive_size"`
}

// Sensitivity converts the section into an engine configuration.
func (c EngineConfig) Sensitivity() sensitivity.Config {
	cfg := sensitivity.DefaultConfig()
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	cfg.PrecomputeTransitions = c.PrecomputeTransitions
	if c.MaxExhaustiveSize > 0 {
		cfg.MaxExhaustiveSize = c.MaxExhaustiveSize
	}
	return cfg
}

// StoreConfig configures report persistence.
type StoreConfig struct {
	// Kind is "sqlite" (default) or "memory".
	Kind string `json:"kind" yaml:"kind"`

	// Dir holds the report database. Empty means ~/.boolnet.
	// Supports ${VAR} syntax.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Save persists a report for every analysis command.
	Save bool `json:"save" yaml:"save"`
}

// LoggingConfig configures boolnet's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables analysis tracing to ~/.boolnet/analyses.jsonl.
	Level string `json:"level" yaml:"level"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after each command.
	// Empty disables the export. Supports ${VAR} syntax.
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

// Default returns a BoolnetConfig with sensible defaults.
func Default() *BoolnetConfig {
	return &BoolnetConfig{
		Engine: EngineConfig{
			Workers:               0,
			PrecomputeTransitions: true,
			MaxExhaustiveSize:     sensitivity.DefaultConfig().MaxExhaustiveSize,
		},
		Store: StoreConfig{
			Kind: store.KindSQLite,
			Save: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the default config file location, ~/.boolnet/config.yaml.
func Path() (string, error) {
	dir, err := store.GlobalPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.boolnet/config.yaml -> environment variables
func Load() (*BoolnetConfig, error) {
	return LoadPath("")
}

// LoadPath is Load with an explicit config file. An empty path means the
// default location, which may be absent; an explicit path must exist.
func LoadPath(path string) (*BoolnetConfig, error) {
	config := Default()

	if path == "" {
		if def, err := Path(); err == nil {
			if _, statErr := os.Stat(def); statErr == nil {
				path = def
			}
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func LoadFromFile(path string) (*BoolnetConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	config := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Store.Dir = expandEnvVars(config.Store.Dir)
	config.Metrics.Textfile = expandEnvVars(config.Metrics.Textfile)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *BoolnetConfig) Validate() error {
	if c.Engine.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Engine.Workers)
	}

	if c.Engine.MaxExhaustiveSize < 1 || c.Engine.MaxExhaustiveSize > 30 {
		return fmt.Errorf("max_exhaustive_size must be between 1 and 30, got %d", c.Engine.MaxExhaustiveSize)
	}

	switch c.Store.Kind {
	case "", store.KindSQLite, store.KindMemory:
	default:
		return fmt.Errorf("invalid store kind: %s (valid: sqlite, memory)", c.Store.Kind)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// Get returns the value at a dotted key such as "engine.workers".
func (c *BoolnetConfig) Get(key string) (any, bool) {
	switch key {
	case "engine.workers":
		return c.Engine.Workers, true
	case "engine.precompute_transitions":
		return c.Engine.PrecomputeTransitions, true
	case "engine.max_exhaustive_size":
		return c.Engine.MaxExhaustiveSize, true
	case "store.kind":
		return c.Store.Kind, true
	case "store.dir":
		return c.Store.Dir, true
	case "store.save":
		return c.Store.Save, true
	case "logging.level":
		return c.Logging.Level, true
	case "metrics.textfile":
		return c.Metrics.Textfile, true
	}
	return nil, false
}

// Keys lists every key accepted by Get, in display order.
func Keys() []string {
	return []string{
		"engine.workers",
		"engine.precompute_transitions",
		"engine.max_exhaustive_size",
		"store.kind",
		"store.dir",
		"store.save",
		"logging.level",
		"metrics.textfile",
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
// A malformed number or boolean is an error, not a silent default.
func applyEnvOverrides(config *BoolnetConfig) error {
	if v := os.Getenv("BOOLNET_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOLNET_WORKERS: %w", err)
		}
		config.Engine.Workers = n
	}

	if v := os.Getenv("BOOLNET_PRECOMPUTE_TRANSITIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BOOLNET_PRECOMPUTE_TRANSITIONS: %w", err)
		}
		config.Engine.PrecomputeTransitions = b
	}

	if v := os.Getenv("BOOLNET_MAX_EXHAUSTIVE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOLNET_MAX_EXHAUSTIVE_SIZE: %w", err)
		}
		config.Engine.MaxExhaustiveSize = n
	}

	if v := os.Getenv("BOOLNET_STORE"); v != "" {
		config.Store.Kind = v
	}

	if v := os.Getenv("BOOLNET_STORE_DIR"); v != "" {
		config.Store.Dir = v
	}

	if v := os.Getenv("BOOLNET_LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv("BOOLNET_METRICS_TEXTFILE"); v != "" {
		config.Metrics.Textfile = v
	}

	return nil
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
