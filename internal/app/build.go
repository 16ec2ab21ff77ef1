package service

import (
	"context"
	"fmt"

	"github.com/okian/mostpopular/internal/adapters/ezdb"
	"github.com/okian/mostpopular/internal/adapters/googleanalytics"
	"github.com/okian/mostpopular/internal/config"
	"github.com/okian/mostpopular/internal/provider"
	"github.com/okian/mostpopular/internal/provider/analytics"
	"github.com/okian/mostpopular/internal/provider/ezlegacy"
	"github.com/okian/mostpopular/pkg/logger"
)

// FromConfig builds a Service with the provider selected by cfg.Provider.
// The ezlegacy provider opens its database here; Close releases it.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	sort, err := provider.ParseSortDirection(cfg.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	base := []Option{
		WithLogger(log),
		WithLimit(cfg.Limit),
		WithOffset(cfg.Offset),
		WithSortDirection(sort),
		WithWindow(cfg.Window),
	}

	switch cfg.Provider {
	case config.ProviderAnalytics:
		p := NewAnalyticsProvider(cfg.Analytics, log, googleanalytics.NewClient)
		base = append(base, WithProvider(analytics.Name, p))

	case config.ProviderEzLegacy:
		db, err := ezdb.Open(ctx, ezdb.Config{DSN: cfg.EzLegacy.DSN})
		if err != nil {
			return nil, fmt.Errorf("open eZ Publish database: %w", err)
		}
		p, err := NewEzLegacyProvider(cfg.EzLegacy, log, ezdb.NewRuntime(db))
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		base = append(base, WithProvider(ezlegacy.Name, p), WithCloser(db))

	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider)
	}

	return New(append(base, opts...)...)
}

// NewAnalyticsProvider configures an analytics provider from cfg.
func NewAnalyticsProvider(cfg config.AnalyticsConfig, log logger.Logger, factory analytics.ClientFactory) *analytics.Provider {
	p := analytics.New(
		analytics.WithClientFactory(factory),
		analytics.WithLogger(log.Named(analytics.Name)),
	).
		SetProfileID(cfg.ProfileID).
		SetAuthConfigFile(cfg.AuthConfigFile)
	for _, f := range cfg.Filters {
		p.AddFilter(f)
	}
	for _, m := range cfg.Metrics {
		p.AddMetric(m)
	}
	for _, d := range cfg.Dimensions {
		p.AddDimension(d)
	}
	return p
}

// NewEzLegacyProvider configures an eZ Publish legacy provider from cfg.
func NewEzLegacyProvider(cfg config.EzLegacyConfig, log logger.Logger, rt ezlegacy.Runtime) (*ezlegacy.Provider, error) {
	p, err := ezlegacy.New(rt, ezlegacy.WithLogger(log.Named(ezlegacy.Name)))
	if err != nil {
		return nil, err
	}
	if cfg.SectionID > 0 {
		p.SetSectionID(cfg.SectionID)
	}
	for _, class := range cfg.ContentClasses {
		p.AddContentClass(class)
	}
	return p, nil
}
