// Package config loads procforge process settings from the environment.
// Command-line flags override these values in the CLI.
package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/procforge/internal/proc"
)

// Config holds process configuration.
type Config struct {
	Capacity int    `env:"PROCFORGE_CAPACITY"  envDefault:"64"`
	RateCap  int    `env:"PROCFORGE_RATE_CAP"  envDefault:"1000"`
	DBPath   string `env:"PROCFORGE_DB"`
	LogLevel string `env:"PROCFORGE_LOG_LEVEL" envDefault:"info"`

	// AuditMaxPerMinute is the default audit threshold.
	AuditMaxPerMinute float64 `env:"PROCFORGE_AUDIT_MAX_PER_MINUTE" envDefault:"600"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("PROCFORGE_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Logger builds a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// EngineOptions returns the engine options implied by the configuration.
func (c Config) EngineOptions(logger *slog.Logger) []proc.Option {
	opts := []proc.Option{
		proc.WithCapacity(c.Capacity),
		proc.WithRateCap(c.RateCap),
	}
	if logger != nil {
		opts = append(opts, proc.WithLogger(logger))
	}
	return opts
}
