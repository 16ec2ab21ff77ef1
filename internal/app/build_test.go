package service_test

import (
	"context"
	"errors"
	"testing"

	service "github.com/okian/mostpopular/internal/app"
	"github.com/okian/mostpopular/internal/adapters/ezdb"
	"github.com/okian/mostpopular/internal/config"
	"github.com/okian/mostpopular/internal/provider"
	"github.com/okian/mostpopular/internal/provider/analytics"
	"github.com/okian/mostpopular/internal/provider/ezlegacy"
	"github.com/okian/mostpopular/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type stubClient struct {
	query analytics.Query
}

func (c *stubClient) Get(_ context.Context, q analytics.Query) (*analytics.Report, error) {
	c.query = q
	return &analytics.Report{
		TotalResults: 1,
		ColumnHeaders: []analytics.ColumnHeader{
			{Name: "ga:pagePath"}, {Name: "ga:pageTitle"}, {Name: "ga:pageviews"},
		},
		Rows: [][]string{{"/news/a", "A", "10"}},
	}, nil
}

type emptyRuntime struct{}

func (emptyRuntime) ListClasses(context.Context, []string) ([]ezlegacy.ContentClass, error) {
	return nil, nil
}

func (emptyRuntime) ViewTopList(context.Context, int, int, int) ([]ezlegacy.ContentObject, error) {
	return nil, nil
}

func (emptyRuntime) FetchViewCount(context.Context, int) (*ezlegacy.ViewCount, error) {
	return nil, nil
}

func TestFromConfig(t *testing.T) {
	Convey("Given the default config", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		Convey("When building the analytics service", func() {
			svc, err := service.FromConfig(ctx, cfg, logger.Nop())

			Convey("Then the analytics provider is selected", func() {
				So(err, ShouldBeNil)
				So(svc.Provider(), ShouldEqual, analytics.Name)
			})

			Convey("And fetching without a profile id is a bad configuration", func() {
				_, err := svc.MostPopular(ctx, service.Request{})
				So(errors.Is(err, provider.ErrBadConfiguration), ShouldBeTrue)
			})
		})

		Convey("When building the ezlegacy service without a dsn", func() {
			cfg.Provider = config.ProviderEzLegacy
			_, err := service.FromConfig(ctx, cfg, nil)

			Convey("Then the database error is returned", func() {
				So(errors.Is(err, ezdb.ErrNoDSN), ShouldBeTrue)
			})
		})

		Convey("When the sort is invalid", func() {
			cfg.Sort = "sideways"
			_, err := service.FromConfig(ctx, cfg, nil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the provider is unknown", func() {
			cfg.Provider = "matomo"
			_, err := service.FromConfig(ctx, cfg, nil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestNewAnalyticsProvider(t *testing.T) {
	Convey("Given analytics settings", t, func() {
		client := &stubClient{}
		factory := func(context.Context, string) (analytics.Client, error) { return client, nil }
		p := service.NewAnalyticsProvider(config.AnalyticsConfig{
			ProfileID:      "33408065",
			AuthConfigFile: "service-account.json",
			Filters:        []string{"ga:pagePath=~^/news/"},
			Metrics:        []string{"ga:sessions"},
		}, logger.Nop(), factory)

		Convey("When fetching", func() {
			got, err := p.FetchMostPopular(context.Background())

			Convey("Then the settings shape the query", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(client.query.ViewID, ShouldEqual, "ga:33408065")
				So(client.query.Metrics, ShouldEqual, "ga:pageviews,ga:sessions")
				So(client.query.Options.Filters, ShouldEqual, "ga:pagePath=~^/news/")
			})
		})
	})
}

func TestNewEzLegacyProvider(t *testing.T) {
	Convey("Given legacy settings", t, func() {
		Convey("When a runtime is available", func() {
			p, err := service.NewEzLegacyProvider(config.EzLegacyConfig{
				SectionID:      3,
				ContentClasses: []string{"article", "news"},
			}, logger.Nop(), emptyRuntime{})

			Convey("Then the provider fetches an empty list", func() {
				So(err, ShouldBeNil)
				got, err := p.FetchMostPopular(context.Background())
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When no runtime is available", func() {
			_, err := service.NewEzLegacyProvider(config.EzLegacyConfig{}, logger.Nop(), nil)
			So(errors.Is(err, provider.ErrNotFound), ShouldBeTrue)
		})
	})
}
