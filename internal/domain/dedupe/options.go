// Package dedupe suppresses duplicate notifications.
package dedupe

import "time"

// Option applies a configuration option to the window deduper.
type Option func(*windowDeduper)

// WithWindow sets the suppression window for repeated keys.
func WithWindow(window time.Duration) Option {
	return func(d *windowDeduper) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithPruneInterval sets how often expired entries are swept.
func WithPruneInterval(interval time.Duration) Option {
	return func(d *windowDeduper) {
		if interval > 0 {
			d.pruneEvery = interval
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(d *windowDeduper) {
		if now != nil {
			d.now = now
		}
	}
}
