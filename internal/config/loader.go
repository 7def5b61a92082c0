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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if EPLF_CONFIG is set
//  3. env (prefix EPLF_)
func Load() (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("EPLF_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: EPLF_ADDR, EPLF_SEASON_LENGTH, ...
	// Map env keys like EPLF_SEASON_LENGTH -> season_length (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("EPLF_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "eplf_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ProviderURL == "":
		return fmt.Errorf("%w: provider_url must not be empty", ErrInvalidConfig)
	case c.SeasonLength <= 0:
		return fmt.Errorf("%w: season_length must be positive", ErrInvalidConfig)
	case c.IdleInterval <= 0 || c.LiveInterval <= 0:
		return fmt.Errorf("%w: refresh intervals must be positive", ErrInvalidConfig)
	case c.LiveInterval > c.IdleInterval:
		return fmt.Errorf("%w: live_interval must not exceed idle_interval", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	return nil
}
