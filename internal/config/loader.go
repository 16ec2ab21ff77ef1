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

	"github.com/okian/mostpopular/internal/provider"
)

const (
	// FileEnv names the variable holding the YAML config path.
	FileEnv = "MOSTPOPULAR_CONFIG"

	envPrefix = "MOSTPOPULAR_"

	listSeparator = ","
)

// listKeys hold comma-separated lists when set from the environment.
var listKeys = map[string]bool{
	"analytics.filters":        true,
	"analytics.metrics":        true,
	"analytics.dimensions":     true,
	"ezlegacy.content_classes": true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if MOSTPOPULAR_CONFIG is set
//  3. env (prefix MOSTPOPULAR_, "__" separates nested keys)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MOSTPOPULAR_MAX_LIMIT -> max_limit
	// MOSTPOPULAR_ANALYTICS__PROFILE_ID -> analytics.profile_id
	// MOSTPOPULAR_EZLEGACY__CONTENT_CLASSES=article,news -> ezlegacy.content_classes: [article news]
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, listSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Provider != ProviderAnalytics && c.Provider != ProviderEzLegacy:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	case c.Limit < 0:
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidConfig)
	case c.MaxLimit < 1:
		return fmt.Errorf("%w: max_limit must be at least 1", ErrInvalidConfig)
	case c.Limit > c.MaxLimit:
		return fmt.Errorf("%w: limit %d is above max_limit %d", ErrInvalidConfig, c.Limit, c.MaxLimit)
	case c.Window <= 0:
		return fmt.Errorf("%w: window must be positive", ErrInvalidConfig)
	}
	if _, err := provider.ParseSortDirection(c.Sort); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
