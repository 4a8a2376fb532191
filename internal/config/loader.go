package config

import (
	"context"
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
//  2. file (YAML) if SRS_CONFIG is set
//  3. env (prefix SRS_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SRS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SRS_MIN_PITCH, SRS_NOTES_PER_MEASURE, ...
	// Map env keys like SRS_MIN_PITCH -> min_pitch (flat keys),
	// preserving underscores to match the koanf tags on the struct.
	envProvider := env.Provider("SRS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "srs_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MinPitch < 0 || cfg.MaxPitch > 127 || cfg.MinPitch > cfg.MaxPitch {
		return fmt.Errorf("%w: pitch range [%d,%d] outside 0..127", ErrInvalidConfig, cfg.MinPitch, cfg.MaxPitch)
	}
	if cfg.Clef != "treble" && cfg.Clef != "bass" {
		return fmt.Errorf("%w: clef must be treble or bass, got %q", ErrInvalidConfig, cfg.Clef)
	}
	if cfg.NotesPerMeasure <= 0 {
		return fmt.Errorf("%w: notes_per_measure must be positive", ErrInvalidConfig)
	}
	if cfg.TotalNotes < 0 {
		return fmt.Errorf("%w: total_notes must not be negative", ErrInvalidConfig)
	}
	if cfg.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
