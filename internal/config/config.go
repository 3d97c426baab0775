// Package config defines service configuration and its loading.
package config

import (
	"fmt"
	"math"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Tau constrains how fast volatility may change between periods.
	Tau float64 `koanf:"tau"`

	// DefaultVolatility is given to newly registered players.
	DefaultVolatility float64 `koanf:"default_volatility"`

	// MaxSolverIterations bounds the volatility root search.
	MaxSolverIterations int `koanf:"max_solver_iterations"`

	// StorePath is the BoltDB file. Empty keeps ratings in memory only.
	StorePath string `koanf:"store_path"`

	// DedupeSize sets how many result ids are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Tau:                 0.5,
		DefaultVolatility:   0.06,
		MaxSolverIterations: 100,
		StorePath:           "",
		DedupeSize:          100_000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !positiveFinite(c.Tau):
		return fmt.Errorf("%w: tau %v must be positive", ErrInvalidConfig, c.Tau)
	case !positiveFinite(c.DefaultVolatility):
		return fmt.Errorf("%w: default_volatility %v must be positive", ErrInvalidConfig, c.DefaultVolatility)
	case c.MaxSolverIterations <= 0:
		return fmt.Errorf("%w: max_solver_iterations %d must be positive", ErrInvalidConfig, c.MaxSolverIterations)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size %d must not be negative", ErrInvalidConfig, c.DedupeSize)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}
