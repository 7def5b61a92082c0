package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/adapters/fixtures"
	"github.com/TheLoudSteve/epl-forecast/internal/adapters/http/api"
	"github.com/TheLoudSteve/epl-forecast/internal/adapters/http/site"
	"github.com/TheLoudSteve/epl-forecast/internal/adapters/http/swagger"
	workerpool "github.com/TheLoudSteve/epl-forecast/internal/adapters/mq/worker"
	"github.com/TheLoudSteve/epl-forecast/internal/adapters/provider"
	"github.com/TheLoudSteve/epl-forecast/internal/adapters/push"
	"github.com/TheLoudSteve/epl-forecast/internal/adapters/repository"
	app "github.com/TheLoudSteve/epl-forecast/internal/app"
	"github.com/TheLoudSteve/epl-forecast/internal/config"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/dedupe"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/notify"
	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Snapshot and preference storage.
	history, err := repository.OpenSQLite(cfg.DBPath,
		repository.WithSnapshotRetention(cfg.SnapshotRetention),
	)
	if err != nil {
		os.Stderr.WriteString("failed to open database: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := history.Close(); err != nil {
			loggerInstance.Error(ctx, "failed to close database", logger.Error(err))
		}
	}()

	// Standings provider and fixtures schedule.
	fetcher := provider.New(
		provider.WithURL(cfg.ProviderURL),
		provider.WithAPIKey(cfg.ProviderKey),
		provider.WithAPIHost(cfg.ProviderHost),
		provider.WithTimeout(cfg.ProviderTimeout),
	)
	schedule := fixtures.New(
		fixtures.WithURL(cfg.FixturesURL),
		fixtures.WithCacheTTL(cfg.FixturesCacheTTL),
	)

	// Push delivery: log-only unless a gateway is configured.
	var sender workerpool.Sender = push.NewLogSender()
	if cfg.PushGatewayURL != "" {
		sender = push.NewHTTPSender(cfg.PushGatewayURL)
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithFetcher(fetcher),
		app.WithSchedule(schedule),
		app.WithHistoryStore(history),
		app.WithSender(sender),
		app.WithLimiter(notify.NewLimiter(
			notify.WithHourlyLimit(cfg.HourlyNotificationLimit),
			notify.WithDailyLimit(cfg.DailyNotificationLimit),
			notify.WithMinGap(cfg.NotificationMinGap),
		)),
		app.WithDeduper(dedupe.NewWindowDeduper(
			dedupe.WithWindow(cfg.DedupeWindow),
		)),
		app.WithRefreshIntervals(cfg.IdleInterval, cfg.LiveInterval),
		app.WithSeasonLength(cfg.SeasonLength),
		app.WithQueueSize(cfg.QueueSize),
		app.WithWorkerCount(cfg.WorkerCount),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	// Register the web frontend at the root.
	site.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queue_length"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}

	if workerCount, ok := stats["worker_count"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
