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

// Environment variable carrying the optional YAML config path.
const configPathEnv = "BASELINE_CONFIG"

// envPrefix namespaces the engine's environment variables.
const envPrefix = "BASELINE_"

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BASELINE_CONFIG is set
//  3. env (prefix BASELINE_), e.g. BASELINE_DATABASE_URL
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(configPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// BASELINE_FORM_WINDOW -> form_window; underscores are preserved to
	// match the koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MetricsAddr == "" {
		return ErrMissingMetricsAddr
	}
	if c.BaseKFactor <= 0 || c.InitialRating <= 0 || c.InitialRD <= 0 || c.InitialVolatility <= 0 {
		return ErrInvalidConstants
	}
	if c.FormWindow <= 0 || c.BigMatchWindow <= 0 || c.TournamentSuccessWindow <= 0 {
		return ErrInvalidWindows
	}
	return nil
}
