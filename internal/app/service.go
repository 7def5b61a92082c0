// Package service provides the core business service that implements
// the dependencies required by the HTTP API: the periodic refresh loop,
// forecast recomputation, change detection, and notification fan-out.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/adapters/fixtures"
	notifqueue "github.com/TheLoudSteve/epl-forecast/internal/adapters/mq/queue"
	workerpool "github.com/TheLoudSteve/epl-forecast/internal/adapters/mq/worker"
	"github.com/TheLoudSteve/epl-forecast/internal/adapters/push"
	"github.com/TheLoudSteve/epl-forecast/internal/adapters/repository"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/dedupe"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/forecast"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/history"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/notify"
	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"
)

// Update types carried on tables and snapshots.
const (
	UpdateScheduled = "scheduled"
	UpdateLiveMatch = "live_match"
)

// Fetcher retrieves the current standings from the upstream provider.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.StandingsRow, error)
}

// WindowEvaluator reports whether a live match window is open.
type WindowEvaluator interface {
	Evaluate(ctx context.Context) fixtures.Status
}

// Service implements the API dependencies for the forecast system.
type Service struct {
	mu sync.RWMutex

	// Core components
	fetcher  Fetcher
	schedule WindowEvaluator
	calc     *forecast.Calculator
	tables   repository.TableStore
	history  repository.HistoryStore
	queue    notifqueue.Queue
	pool     *workerpool.Pool
	sender   workerpool.Sender
	limiter  *notify.Limiter
	deduper  dedupe.Deduper

	// Configuration
	idleInterval time.Duration
	liveInterval time.Duration
	seasonLength int
	queueSize    int
	workerCount  int

	// End-of-day digests held until the local date rolls over.
	pending    []notifqueue.Message
	pendingDay string

	// State
	started    bool
	lastStatus fixtures.Status
	stopCh     chan struct{}
	doneCh     chan struct{}
	now        func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the standings source.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithSchedule sets the match window evaluator.
func WithSchedule(w WindowEvaluator) Option {
	return func(s *Service) {
		if w != nil {
			s.schedule = w
		}
	}
}

// WithTableStore sets the cached table store.
func WithTableStore(store repository.TableStore) Option {
	return func(s *Service) {
		if store != nil {
			s.tables = store
		}
	}
}

// WithHistoryStore sets the snapshot and preferences store.
func WithHistoryStore(store repository.HistoryStore) Option {
	return func(s *Service) {
		if store != nil {
			s.history = store
		}
	}
}

// WithSender sets the notification delivery sender.
func WithSender(sender workerpool.Sender) Option {
	return func(s *Service) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithLimiter sets the per-user notification rate limiter.
func WithLimiter(l *notify.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithDeduper sets the duplicate-content suppressor.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithRefreshIntervals sets the idle and live refresh cadences.
func WithRefreshIntervals(idle, live time.Duration) Option {
	return func(s *Service) {
		if idle > 0 && live > 0 {
			s.idleInterval = idle
			s.liveInterval = live
		}
	}
}

// WithSeasonLength sets the number of games in a full season.
func WithSeasonLength(games int) Option {
	return func(s *Service) {
		if games > 0 {
			s.seasonLength = games
		}
	}
}

// WithQueueSize sets the maximum size of the notification queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of delivery workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithClock overrides the time source. Mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		idleInterval: 30 * time.Minute,
		liveInterval: 2 * time.Minute,
		seasonLength: 38,
		queueSize:    10_000,
		workerCount:  4,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes components, runs the first refresh, and launches the
// periodic refresh loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.fetcher == nil || s.history == nil {
		s.mu.Unlock()
		return errors.New("service requires a fetcher and a history store")
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting forecast service...")

	if s.tables == nil {
		s.tables = repository.NewMemTable()
	}
	if s.schedule == nil {
		s.schedule = fixtures.New()
	}
	if s.sender == nil {
		s.sender = push.NewLogSender()
	}
	if s.limiter == nil {
		s.limiter = notify.NewLimiter()
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewWindowDeduper()
	}
	s.calc = forecast.New(forecast.WithSeasonLength(s.seasonLength))
	s.queue = notifqueue.NewInMemoryQueue(notifqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.sender, s.limiter, s.deduper)
	s.pool.Start(ctx)
	s.pendingDay = s.now().Format("2006-01-02")

	s.started = true
	s.mu.Unlock()

	// First refresh is synchronous so the API starts with a table when the
	// upstream is healthy.
	s.refresh(ctx)
	go s.refreshLoop(ctx)

	s.logger.Info(ctx, "forecast service started",
		logger.Duration("idle_interval", s.idleInterval),
		logger.Duration("live_interval", s.liveInterval),
		logger.Int("workers", s.workerCount),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping forecast service...")

	// The refresh loop takes the service lock mid-cycle, so wait for it
	// without holding the lock.
	<-s.doneCh

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.history != nil {
		_ = s.history.Close()
	}

	s.started = false
	s.logger.Info(ctx, "forecast service stopped")
}

// refreshLoop re-arms a timer after every refresh so the cadence can follow
// the match window: fast while matches are live, slow otherwise.
func (s *Service) refreshLoop(ctx context.Context) {
	defer close(s.doneCh)

	timer := time.NewTimer(s.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-timer.C:
			s.refresh(ctx)
			timer.Reset(s.nextInterval())
		}
	}
}

func (s *Service) nextInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastStatus.Active {
		return s.liveInterval
	}
	return s.idleInterval
}

// refresh performs one fetch-forecast-store-notify cycle. A fetch failure
// leaves the cached table untouched; there is no retry before the next tick.
func (s *Service) refresh(ctx context.Context) {
	status := s.schedule.Evaluate(ctx)
	s.mu.Lock()
	s.lastStatus = status
	s.mu.Unlock()

	updateType := UpdateScheduled
	if status.Active {
		updateType = UpdateLiveMatch
	}

	rows, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Warn(ctx, "standings refresh failed, serving stale table",
			logger.Error(err),
			logger.Duration("table_age", s.tables.Age(ctx)))
		s.flushPending(ctx)
		return
	}

	start := time.Now()
	table := s.calc.Compute(rows, updateType)
	metrics.RecordForecastRecompute(float64(time.Since(start).Milliseconds()))

	if err := s.tables.Swap(ctx, table); err != nil {
		s.logger.Error(ctx, "table swap failed", logger.Error(err))
		return
	}

	snap := history.NewSnapshot(table, history.Season(table.LastUpdated), status.Context())
	previous, err := s.history.LatestSnapshot(ctx)
	switch {
	case err == nil:
		changes := history.DetectChanges(previous, snap)
		if len(changes) > 0 {
			metrics.RecordPositionChanges(len(changes))
			s.fanOut(ctx, changes, table.TotalTeams())
		}
	case errors.Is(err, repository.ErrNotFound):
		// First refresh of a fresh store; nothing to compare against.
	default:
		s.logger.Error(ctx, "loading previous snapshot failed", logger.Error(err))
	}

	if err := s.history.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error(ctx, "snapshot save failed", logger.Error(err))
	}

	s.flushPending(ctx)

	s.logger.Info(ctx, "forecast table refreshed",
		logger.Int("teams", table.TotalTeams()),
		logger.String("update_type", updateType),
		logger.Bool("match_window", status.Active))
}

// fanOut turns detected changes into queued notifications per user
// preference. Immediate notifications enter the queue now; end-of-day
// notifications are held until the date rolls over.
func (s *Service) fanOut(ctx context.Context, changes []model.PositionChange, totalTeams int) {
	prefs, err := s.history.ListPreferences(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing preferences failed", logger.Error(err))
		return
	}

	for _, change := range changes {
		for _, p := range prefs {
			if !notify.ShouldNotify(p, change, totalTeams) {
				metrics.RecordNotificationSuppressed("preferences")
				continue
			}
			n := notify.New(p, notify.PositionChangeContent(change, totalTeams))
			if p.Timing == model.TimingEndOfDay {
				s.mu.Lock()
				s.pending = append(s.pending, n)
				s.mu.Unlock()
				continue
			}
			if !s.queue.Enqueue(ctx, n) {
				s.logger.Warn(ctx, "notification queue full, dropping",
					logger.String("user_id", p.UserID))
			}
		}
	}
}

// flushPending releases end-of-day notifications once the local date changes.
func (s *Service) flushPending(ctx context.Context) {
	today := s.now().Format("2006-01-02")

	s.mu.Lock()
	if today == s.pendingDay {
		s.mu.Unlock()
		return
	}
	held := s.pending
	s.pending = nil
	s.pendingDay = today
	s.mu.Unlock()

	for _, n := range held {
		if !s.queue.Enqueue(ctx, n) {
			s.logger.Warn(ctx, "notification queue full, dropping digest",
				logger.String("user_id", n.UserID))
		}
	}
}

// Table returns the cached forecast table.
func (s *Service) Table(ctx context.Context) (model.Table, bool) {
	return s.tables.Current(ctx)
}

// TeamRow returns the forecast row for one team, matched case-insensitively.
func (s *Service) TeamRow(ctx context.Context, name string) (model.Team, bool) {
	table, ok := s.tables.Current(ctx)
	if !ok {
		return model.Team{}, false
	}
	return table.Team(name)
}

// TableAge returns the staleness of the cached table; negative when empty.
func (s *Service) TableAge(ctx context.Context) time.Duration {
	return s.tables.Age(ctx)
}

// MatchWindow returns the most recent window evaluation.
func (s *Service) MatchWindow(_ context.Context) fixtures.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStatus
}

// GetPreferences returns stored notification preferences for a user.
func (s *Service) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	return s.history.GetPreferences(ctx, userID)
}

// PutPreferences validates and stores notification preferences.
func (s *Service) PutPreferences(ctx context.Context, prefs model.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	return s.history.PutPreferences(ctx, prefs)
}

// DeletePreferences removes a user's notification preferences.
func (s *Service) DeletePreferences(ctx context.Context, userID string) error {
	return s.history.DeletePreferences(ctx, userID)
}

// SendTestNotification queues a verification notification for a user.
func (s *Service) SendTestNotification(ctx context.Context, userID string) error {
	prefs, err := s.history.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}
	n := notify.New(prefs, notify.TestContent(prefs))
	if !s.queue.Enqueue(ctx, n) {
		return fmt.Errorf("notification queue full")
	}
	return nil
}

// Snapshots returns recent forecast snapshots, newest first.
func (s *Service) Snapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	return s.history.Snapshots(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"worker_count":  s.workerCount,
		"queue_size":    s.queueSize,
		"idle_interval": s.idleInterval.String(),
		"live_interval": s.liveInterval.String(),
		"season_length": s.seasonLength,
	}

	if s.started {
		stats["queue_length"] = s.queue.Len(ctx)
		stats["match_window_active"] = s.lastStatus.Active
		stats["match_window_reason"] = s.lastStatus.Reason
		if table, ok := s.tables.Current(ctx); ok {
			stats["table_teams"] = table.TotalTeams()
			stats["table_last_updated"] = table.LastUpdated.UTC().Format(time.RFC3339)
			stats["table_update_type"] = table.UpdateType
		}
		stats["pending_digests"] = len(s.pending)
	}
	return stats
}
