// Package config loads process-level defaults from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the defaults a command line can override.
type Env struct {
	Threshold    int    `env:"QSEQ_THRESHOLD" envDefault:"5000"`
	Threads      int    `env:"QSEQ_THREADS" envDefault:"0"`
	OTelEndpoint string `env:"QSEQ_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"QSEQ_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Env and rejects negative values.
func Load() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return e, err
	}
	if e.Threshold < 0 {
		return e, fmt.Errorf("QSEQ_THRESHOLD must be >= 0, got %d", e.Threshold)
	}
	if e.Threads < 0 {
		return e, fmt.Errorf("QSEQ_THREADS must be >= 0, got %d", e.Threads)
	}
	return e, nil
}
