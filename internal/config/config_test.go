package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/mostpopular/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Provider, convey.ShouldEqual, config.ProviderAnalytics)
			convey.So(cfg.Limit, convey.ShouldEqual, 5)
			convey.So(cfg.Offset, convey.ShouldEqual, 0)
			convey.So(cfg.Sort, convey.ShouldEqual, "desc")
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 100)
			convey.So(cfg.Window, convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.EzLegacy.SectionID, convey.ShouldEqual, 2)
			convey.So(cfg.EzLegacy.ContentClasses, convey.ShouldResemble, []string{"article"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid setting", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"unknown provider", func(c *config.Config) { c.Provider = "matomo" }},
			{"negative limit", func(c *config.Config) { c.Limit = -1 }},
			{"zero max limit", func(c *config.Config) { c.MaxLimit = 0 }},
			{"limit above max limit", func(c *config.Config) { c.Limit = 500; c.MaxLimit = 100 }},
			{"zero window", func(c *config.Config) { c.Window = 0 }},
			{"bad sort", func(c *config.Config) { c.Sort = "sideways" }},
		}

		convey.Convey("When the limit equals the max limit", func() {
			cfg := config.New(context.Background())
			cfg.Limit, cfg.MaxLimit = 100, 100

			convey.Convey("Then it should pass", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		for _, tc := range cases {
			convey.Convey("When validating with "+tc.name, func() {
				cfg := config.New(context.Background())
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then it should fail with ErrInvalidConfig", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
