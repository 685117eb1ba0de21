package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COMPSCHED_CONFIG is set
//  3. env (prefix COMPSCHED_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("COMPSCHED_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: COMPSCHED_DAY_START, COMPSCHED_SIM_ATHLETES, ...
	// Map env keys like COMPSCHED_DAY_START -> day_start (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("COMPSCHED_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "compsched_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MetricsAddr == "" {
		return fmt.Errorf("%w: metrics_addr must not be empty", ErrInvalidConfig)
	}
	if cfg.WodDurationMin <= 0 {
		return fmt.Errorf("%w: wod_duration_min must be positive", ErrInvalidConfig)
	}
	if cfg.AdvancementRatio <= 0 || cfg.AdvancementRatio >= 1 {
		return fmt.Errorf("%w: advancement_ratio must be in (0, 1)", ErrInvalidConfig)
	}
	if cfg.DirectEliminationMax < 2 {
		return fmt.Errorf("%w: direct_elimination_max must be at least 2", ErrInvalidConfig)
	}
	if cfg.SimAthletes < 2 {
		return fmt.Errorf("%w: sim_athletes must be at least 2", ErrInvalidConfig)
	}
	return nil
}
