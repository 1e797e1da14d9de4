// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the app and scripting engine.
type Config struct {
	// MeshCells is the marching cubes resolution used for primitives.
	MeshCells int `env:"RAPIDORIGIN_MESH_CELLS" envDefault:"64"`
	// WeldTolerance merges kernel vertices closer than this.
	WeldTolerance float64 `env:"RAPIDORIGIN_WELD_TOLERANCE" envDefault:"0.000001"`
	// EvalTimeout bounds a single script evaluation.
	EvalTimeout time.Duration `env:"RAPIDORIGIN_EVAL_TIMEOUT" envDefault:"5s"`
	WindowTitle string        `env:"RAPIDORIGIN_WINDOW_TITLE" envDefault:"Rapid Origin"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.MeshCells <= 0 {
		return fmt.Errorf("config: RAPIDORIGIN_MESH_CELLS must be positive, got %d", c.MeshCells)
	}
	if c.WeldTolerance <= 0 {
		return fmt.Errorf("config: RAPIDORIGIN_WELD_TOLERANCE must be positive, got %g", c.WeldTolerance)
	}
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("config: RAPIDORIGIN_EVAL_TIMEOUT must be positive, got %s", c.EvalTimeout)
	}
	return nil
}
