package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/buildcard/internal/adapters/repository"
	"github.com/okian/buildcard/internal/config"
	"github.com/okian/buildcard/internal/domain/scoring"
	"github.com/okian/buildcard/pkg/logger"
)

func TestWiring(t *testing.T) {
	convey.Convey("Given a config pointing at temp files", t, func() {
		dir := t.TempDir()
		cfg := config.New()
		cfg.ProfilesPath = filepath.Join(dir, "score.json")
		cfg.StoreDir = filepath.Join(dir, "scores")
		cfg.SQLitePath = filepath.Join(dir, "leaderboard.db")
		cfg.WatchProfiles = false
		convey.So(os.WriteFile(cfg.ProfilesPath, []byte(`{}`), 0o644), convey.ShouldBeNil)

		convey.Convey("When opening each local backend", func() {
			for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
				cfg.StoreBackend = backend
				repo, err := openRepository(cfg, logger.Nop())
				convey.So(err, convey.ShouldBeNil)
				convey.So(repo.Backend(), convey.ShouldEqual, backend)
				convey.So(repo.Close(), convey.ShouldBeNil)
			}
		})

		convey.Convey("When opening the redis backend", func() {
			cfg.StoreBackend = config.BackendRedis
			repo, err := openRepository(cfg, logger.Nop())

			convey.Convey("Then the client is created lazily", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(repo.Backend(), convey.ShouldEqual, repository.BackendRedis)
				convey.So(repo.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When building the service and handler", func() {
			repo, err := openRepository(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			svc, err := newService(cfg, repo, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			h := newHandler(cfg, svc, logger.Nop())

			convey.Convey("Then the routes are served", func() {
				for _, path := range []string{"/healthz", "/stats", "/weight/1102", "/openapi.yaml"} {
					w := httptest.NewRecorder()
					h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})

		convey.Convey("When a slot remap file is configured", func() {
			repo, err := openRepository(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = repo.Close() }()

			cfg.SlotRemapPath = filepath.Join(dir, "slot_remap.json")
			convey.So(os.WriteFile(cfg.SlotRemapPath, []byte(`{"61011": "61015"}`), 0o644), convey.ShouldBeNil)
			svc, err := newService(cfg, repo, logger.Nop())

			convey.Convey("Then the service is built with it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.GetStats()["slotRemaps"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the slot remap file is missing", func() {
			repo, err := openRepository(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = repo.Close() }()

			cfg.SlotRemapPath = filepath.Join(dir, "missing.json")
			_, err = newService(cfg, repo, logger.Nop())

			convey.Convey("Then wiring fails", func() {
				convey.So(errors.Is(err, scoring.ErrSlotRemap), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When updating system metrics", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
