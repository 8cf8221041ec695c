package simulate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/arena/internal/adapters/http/api"
	service "github.com/okian/arena/internal/app"
	"github.com/okian/arena/internal/domain/points"
	"github.com/okian/arena/internal/simulate"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func newArena(ctx context.Context) (*httptest.Server, *service.Service) {
	svc := service.New()
	So(svc.Start(ctx), ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc, svc, 100).Register(ctx, mux)
	return httptest.NewServer(mux), svc
}

func TestRun(t *testing.T) {
	Convey("Given a running arena server", t, func() {
		ctx := context.Background()
		srv, svc := newArena(ctx)
		defer func() {
			srv.Close()
			_ = svc.Stop(ctx)
		}()

		cfg := testConfig()
		cfg.BaseURL = srv.URL

		Convey("When simulating with the server's rules", func() {
			stats, err := simulate.Run(ctx, cfg)

			Convey("Then every submission lands and the standings match", func() {
				So(err, ShouldBeNil)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Successful, ShouldEqual, 4+300+12)
				So(stats.Rows, ShouldEqual, 4)
				So(stats.Mismatches, ShouldEqual, 0)
			})
		})

		Convey("When the same seed is simulated twice", func() {
			_, err := simulate.Run(ctx, cfg)
			So(err, ShouldBeNil)
			stats, err := simulate.Run(ctx, cfg)

			Convey("Then the rerun is rejected as duplicates and still verifies", func() {
				So(err, ShouldBeNil)
				So(stats.Duplicate, ShouldEqual, 300+12)
				So(stats.Successful, ShouldEqual, 4)
				So(stats.Mismatches, ShouldEqual, 0)
			})
		})

		Convey("When verifying against different rules", func() {
			rules := points.DefaultRules()
			rules.RevenueUnit = decimal.NewFromInt(1)
			cfg.Rules = rules

			_, err := simulate.Run(ctx, cfg)

			Convey("Then a mismatch is reported", func() {
				So(errors.Is(err, simulate.ErrMismatch), ShouldBeTrue)
			})
		})

		Convey("When the server is unreachable", func() {
			cfg.BaseURL = "http://127.0.0.1:1"
			_, err := simulate.Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
