// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - Errors returned to callers wrap this package's sentinel errors.
package config

import (
	"context"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnalytics = "analytics"
	ProviderEzLegacy  = "ezlegacy"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Provider selects the backend: "analytics" or "ezlegacy".
	Provider string `koanf:"provider"`

	// Limit, Offset and Sort are applied when a request does not set them.
	Limit  int    `koanf:"limit"`
	Offset int    `koanf:"offset"`
	Sort   string `koanf:"sort"`

	// MaxLimit caps GET /most-popular?limit.
	MaxLimit int `koanf:"max_limit"`

	// Window is the default lookback ending now.
	Window time.Duration `koanf:"window"`

	Analytics AnalyticsConfig `koanf:"analytics"`
	EzLegacy  EzLegacyConfig  `koanf:"ezlegacy"`
}

// AnalyticsConfig configures the web-analytics provider.
type AnalyticsConfig struct {
	ProfileID      string   `koanf:"profile_id"`
	AuthConfigFile string   `koanf:"auth_config_file"`
	Filters        []string `koanf:"filters"`
	Metrics        []string `koanf:"metrics"`
	Dimensions     []string `koanf:"dimensions"`
}

// EzLegacyConfig configures the eZ Publish legacy provider.
type EzLegacyConfig struct {
	// DSN is the PostgreSQL connection string of the CMS database.
	DSN            string   `koanf:"dsn"`
	SectionID      int      `koanf:"section_id"`
	ContentClasses []string `koanf:"content_classes"`
}

// New creates a Config with defaults. The context is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":9080",
		Provider: ProviderAnalytics,
		Limit:    5,
		Offset:   0,
		Sort:     "desc",
		MaxLimit: 100,
		Window:   24 * time.Hour,
		EzLegacy: EzLegacyConfig{
			SectionID:      2,
			ContentClasses: []string{"article"},
		},
	}
}
