package main

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/TheLoudSteve/epl-forecast/internal/adapters/http/api"
	app "github.com/TheLoudSteve/epl-forecast/internal/app"
	"github.com/TheLoudSteve/epl-forecast/internal/config"
	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("EPLF_ADDR", ":8080")
			_ = os.Setenv("EPLF_QUEUE_SIZE", "1000")
			_ = os.Setenv("EPLF_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("EPLF_ADDR")
				_ = os.Unsetenv("EPLF_QUEUE_SIZE")
				_ = os.Unsetenv("EPLF_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithSeasonLength(38),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				convey.So(func() {
					server.Register(context.Background(), mux)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		convey.Convey("When updating system metrics", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("When updating service metrics", func() {
			svc := app.New()
			convey.So(func() {
				updateServiceMetrics(svc)
			}, convey.ShouldNotPanic)
		})
	})
}
