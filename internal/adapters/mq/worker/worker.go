// Package worker defines delivery workers that drain the notification queue.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/adapters/mq/queue"
	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Message abstracts what workers read off the queue.
type Message = queue.Message

// Sender delivers one notification to its recipient.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Limiter gates per-user send budgets.
type Limiter interface {
	Allow(userID string) (bool, string)
}

// Deduper suppresses identical notification content within a window.
type Deduper interface {
	SeenAndRecord(ctx context.Context, key string) bool
	Unrecord(ctx context.Context, key string)
}

// Queue defines how workers receive notifications.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Message
}

// Worker processes queued notifications.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker, draining in-flight work.
	Shutdown(ctx context.Context) error
}

// DeliveryWorker implements Worker for notification delivery.
type DeliveryWorker struct {
	queue   Queue
	sender  Sender
	limiter Limiter
	deduper Deduper
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewDeliveryWorker creates a new worker with configuration options.
func NewDeliveryWorker(q Queue, sender Sender, limiter Limiter, deduper Deduper, opts ...Option) *DeliveryWorker {
	w := &DeliveryWorker{
		queue:    q,
		sender:   sender,
		limiter:  limiter,
		deduper:  deduper,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *DeliveryWorker) Run(ctx context.Context) {
	defer close(w.done)

	messages := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case m, ok := <-messages:
			if !ok {
				return
			}
			if err := w.deliver(ctx, m); err != nil {
				w.logger.Error(ctx, "notification delivery failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *DeliveryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// deliver applies the suppression gates and sends one notification.
// Rate limiting runs before the duplicate check so a rate-limited
// notification does not poison the dedupe window for a later retry.
func (w *DeliveryWorker) deliver(ctx context.Context, m Message) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if ok, reason := w.limiter.Allow(m.UserID); !ok {
		metrics.RecordNotificationSuppressed("rate_limit")
		w.logger.Info(ctx, "notification suppressed",
			logger.String("user_id", m.UserID),
			logger.String("reason", reason))
		return nil
	}

	key := m.DedupeKey()
	if w.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordNotificationSuppressed("duplicate")
		w.logger.Info(ctx, "duplicate notification suppressed",
			logger.String("user_id", m.UserID),
			logger.String("title", m.Content.Title))
		return nil
	}

	if err := w.sender.Send(ctx, m); err != nil {
		// Allow an identical notification through on a later change; the
		// user never received this one.
		w.deduper.Unrecord(ctx, key)
		metrics.RecordNotificationFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "delivery_error")
		return fmt.Errorf("deliver notification %s: %w", m.ID, err)
	}

	metrics.RecordNotificationSent()
	return nil
}

// Pool manages multiple delivery workers.
type Pool struct {
	workers []*DeliveryWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, sender Sender, limiter Limiter, deduper Deduper) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*DeliveryWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewDeliveryWorker(q, sender, limiter, deduper,
			WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
