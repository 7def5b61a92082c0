// Package dedupe suppresses duplicate notifications: identical content sent
// to the same user inside the suppression window is delivered at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Deduper records seen notification keys to keep delivery at-most-once per
// window.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was recorded inside the
	// window and records it if not. Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing an immediate retry. Used when a
	// recorded notification failed to enqueue.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// windowDeduper implements Deduper with a map of last-seen timestamps,
// swept lazily while under lock.
type windowDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	size   atomic.Int64
	now    func() time.Time

	// pruneEvery bounds how often the full map is swept.
	pruneEvery time.Duration
	lastPrune  time.Time
}

// NewWindowDeduper creates a deduper with configuration options.
func NewWindowDeduper(opts ...Option) Deduper {
	d := &windowDeduper{
		seen:       make(map[string]time.Time),
		window:     time.Hour,
		pruneEvery: 10 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SeenAndRecord atomically checks and records a key.
func (d *windowDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.maybePrune(now)

	if at, ok := d.seen[key]; ok && now.Sub(at) < d.window {
		return true
	}
	if _, ok := d.seen[key]; !ok {
		d.size.Add(1)
	}
	d.seen[key] = now
	return false
}

// Unrecord removes a key from the seen set.
func (d *windowDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// Size returns the current number of tracked keys.
func (d *windowDeduper) Size() int64 {
	return d.size.Load()
}

// maybePrune sweeps expired entries. Must be called with d.mu held.
func (d *windowDeduper) maybePrune(now time.Time) {
	if now.Sub(d.lastPrune) < d.pruneEvery {
		return
	}
	d.lastPrune = now
	for key, at := range d.seen {
		if now.Sub(at) >= d.window {
			delete(d.seen, key)
			d.size.Add(-1)
		}
	}
}
