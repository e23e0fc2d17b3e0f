package config

import (
	"context"
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
//  2. file (YAML) if GRADETRACK_CONFIG is set
//  3. env (prefix GRADETRACK_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("GRADETRACK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, Wrap("config.load_file", err)
		}
	}

	// Environment variables: GRADETRACK_ADDR, GRADETRACK_STORAGE_DRIVER, ...
	// Map env keys like GRADETRACK_STORAGE_DSN -> storage_dsn (flat keys).
	envProvider := env.Provider("GRADETRACK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gradetrack_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, Wrap("config.load_env", err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, Wrap("config.unmarshal", err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, NewKind("config.validate", ErrInvalidAddr)
	case cfg.StorageDriver != "sqlite" && cfg.StorageDriver != "postgres":
		return nil, NewKind("config.validate", ErrInvalidDriver)
	case cfg.MaxGrade <= cfg.MinGrade:
		return nil, NewKind("config.validate", ErrInvalidGradeRange)
	}
	return &cfg, nil
}
