package notify

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default rate-limit configuration constants, mirroring the delivery
// policy: at most 5 notifications per user per hour with a daily cap of 20,
// and a minimum spacing between consecutive sends.
const (
	defaultHourlyLimit = 5
	defaultDailyLimit  = 20
	defaultMinGap      = 5 * time.Minute
)

// LimiterOption applies a configuration option to the Limiter.
type LimiterOption func(*Limiter)

// WithHourlyLimit sets the per-user hourly send budget.
func WithHourlyLimit(n int) LimiterOption {
	return func(l *Limiter) {
		if n > 0 {
			l.hourlyLimit = n
		}
	}
}

// WithDailyLimit sets the per-user daily cap.
func WithDailyLimit(n int) LimiterOption {
	return func(l *Limiter) {
		if n > 0 {
			l.dailyLimit = n
		}
	}
}

// WithMinGap sets the minimum spacing between sends to the same user.
func WithMinGap(gap time.Duration) LimiterOption {
	return func(l *Limiter) {
		if gap > 0 {
			l.minGap = gap
		}
	}
}

// WithLimiterClock overrides the time source, used by tests.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// Limiter enforces per-user notification pacing. Hourly pacing uses a token
// bucket; the daily cap is a midnight-reset counter.
type Limiter struct {
	mu    sync.Mutex
	users map[string]*userBudget

	hourlyLimit int
	dailyLimit  int
	minGap      time.Duration
	now         func() time.Time
}

type userBudget struct {
	pacer     *rate.Limiter
	day       string
	sentToday int
	lastSent  time.Time
}

// NewLimiter creates a rate limiter with configuration options.
func NewLimiter(opts ...LimiterOption) *Limiter {
	l := &Limiter{
		users:       make(map[string]*userBudget),
		hourlyLimit: defaultHourlyLimit,
		dailyLimit:  defaultDailyLimit,
		minGap:      defaultMinGap,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether a notification to userID may be sent now and, if
// allowed, consumes budget. The returned reason is empty on success.
func (l *Limiter) Allow(userID string) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b := l.users[userID]
	if b == nil {
		b = &userBudget{
			pacer: rate.NewLimiter(rate.Every(time.Hour/time.Duration(l.hourlyLimit)), l.hourlyLimit),
			day:   now.UTC().Format("2006-01-02"),
		}
		l.users[userID] = b
	}

	if day := now.UTC().Format("2006-01-02"); day != b.day {
		b.day = day
		b.sentToday = 0
	}
	if b.sentToday >= l.dailyLimit {
		return false, "daily notification limit exceeded"
	}
	if !b.lastSent.IsZero() && now.Sub(b.lastSent) < l.minGap {
		return false, "minimum spacing between notifications not met"
	}
	if !b.pacer.AllowN(now, 1) {
		return false, "hourly notification limit exceeded"
	}

	b.sentToday++
	b.lastSent = now
	return true, ""
}
