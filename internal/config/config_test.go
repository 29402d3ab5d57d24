package config_test

import (
	"testing"

	"github.com/okian/buildcard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendFile)
			convey.So(cfg.StoreTimeoutMS, convey.ShouldEqual, 2000)
			convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 60)
			convey.So(cfg.ProviderTimeoutMS, convey.ShouldEqual, 3000)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then duration helpers convert units", func() {
			convey.So(cfg.StoreTimeout().Milliseconds(), convey.ShouldEqual, 2000)
			convey.So(cfg.ProviderTimeout().Seconds(), convey.ShouldEqual, 3)
			convey.So(cfg.CacheTTL().Minutes(), convey.ShouldEqual, 1)
		})
	})
}
