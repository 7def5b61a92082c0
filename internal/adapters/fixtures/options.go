package fixtures

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the Schedule.
type Option func(*Schedule)

// WithURL sets the fixtures calendar feed URL.
func WithURL(url string) Option {
	return func(s *Schedule) {
		if url != "" {
			s.url = url
		}
	}
}

// WithCacheTTL bounds how long a fetched feed is reused before refetching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Schedule) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client. Mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Schedule) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithClock overrides the time source. Mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Schedule) {
		if now != nil {
			s.now = now
		}
	}
}
