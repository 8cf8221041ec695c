package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/arena/internal/adapters/repository/memory"
	"github.com/okian/arena/internal/adapters/repository/sqlstore"
	"github.com/okian/arena/internal/config"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"
	cfg.DBDriver = "memory"
	cfg.WorkerCount = 2
	cfg.QueueSize = 16
	return cfg
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given the store selection", t, func() {
		ctx := context.Background()
		log := logger.Discard()

		convey.Convey("When the driver is memory", func() {
			store, err := openStore(ctx, testConfig(), log)

			convey.Convey("Then the in-memory store is used", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*memory.Store)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the driver is sqlite without a path", func() {
			cfg := testConfig()
			cfg.DBDriver = "sqlite"
			cfg.DBPath = ""
			store, err := openStore(ctx, cfg, log)

			convey.Convey("Then an in-memory sqlite store is migrated", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*sqlstore.Store)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.PutTeam(ctx, model.Team{ID: "lions", Name: "Lions"}), convey.ShouldBeNil)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the driver is unknown", func() {
			cfg := testConfig()
			cfg.DBDriver = "oracle"
			_, err := openStore(ctx, cfg, log)

			convey.So(errors.Is(err, sqlstore.ErrUnsupportedDriver), convey.ShouldBeTrue)
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := testConfig()
		store := memory.New()

		convey.Convey("When the rules are valid", func() {
			svc, err := newService(cfg, store, logger.Discard())

			convey.Convey("Then the service carries the configured values", func() {
				convey.So(err, convey.ShouldBeNil)
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 2)
				convey.So(stats["queueSize"], convey.ShouldEqual, 16)
				convey.So(svc.Rules().RevenueUnit.String(), convey.ShouldEqual, "10000")
			})
		})

		convey.Convey("When the rules are invalid", func() {
			cfg.Rules.RevenueUnit = "0"
			_, err := newService(cfg, store, logger.Discard())

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the application mux", t, func() {
		ctx := context.Background()
		cfg := testConfig()
		svc, err := newService(cfg, memory.New(), logger.Discard())
		convey.So(err, convey.ShouldBeNil)
		mux := newMux(ctx, cfg, svc)

		convey.Convey("Then the API routes are served", func() {
			for _, target := range []string{"/healthz", "/stats", "/catalog", "/standings?period=2021-03", "/openapi.yaml", "/api-docs"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And the standings limit follows the configuration", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/standings?period=2021-03&limit=101", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		convey.Convey("When running the application", func() {
			err := run(ctx, testConfig(), logger.Discard())

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}
