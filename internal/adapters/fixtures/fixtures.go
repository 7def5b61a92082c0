// Package fixtures reads the published fixtures calendar and decides whether
// the service is inside a live match window, which drives the fast refresh
// cadence and the notification context strings.
package fixtures

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"
)

// Match window bounds around kickoff. A match counts as live from shortly
// before kickoff until well past the final whistle, covering stoppage time.
const (
	windowBefore = 15 * time.Minute
	windowAfter  = 2*time.Hour + 30*time.Minute

	// upcomingHorizon flags matches about to kick off so polling speeds up
	// before the window formally opens.
	upcomingHorizon = 15 * time.Minute

	// Feed entries older or further out than this are irrelevant to window
	// evaluation and are dropped at parse time.
	searchBack    = 3 * time.Hour
	searchForward = 24 * time.Hour

	// Fixture schedules change at least a week in advance; a 29 hour cache
	// gives daily rotation with overlap.
	defaultCacheTTL = 29 * time.Hour

	// Real matches in the feed are prefixed with the football emoji; other
	// events (deadlines, draws) are not.
	matchPrefix = "⚽️"
)

// Match is one fixture inside the evaluation horizon.
type Match struct {
	Summary     string    `json:"summary"`
	Kickoff     time.Time `json:"kickoff"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// Status reports the outcome of a match window evaluation.
type Status struct {
	Active   bool    `json:"active"`
	Reason   string  `json:"reason"`
	Live     []Match `json:"live,omitempty"`
	Upcoming []Match `json:"upcoming,omitempty"`
}

// Context renders the status as a short human string for notification bodies.
// Empty when no window is active.
func (s Status) Context() string {
	switch {
	case len(s.Live) > 0:
		return "during " + strings.TrimSpace(strings.TrimPrefix(s.Live[0].Summary, matchPrefix))
	case len(s.Upcoming) > 0:
		return "before " + strings.TrimSpace(strings.TrimPrefix(s.Upcoming[0].Summary, matchPrefix))
	default:
		return ""
	}
}

// Schedule fetches and caches the fixtures feed and evaluates match windows.
type Schedule struct {
	url      string
	cacheTTL time.Duration
	http     *http.Client
	now      func() time.Time
	log      logger.Logger

	mu        sync.Mutex
	cached    []Match
	fetchedAt time.Time
}

// New creates a Schedule using provided options.
func New(opts ...Option) *Schedule {
	s := &Schedule{
		cacheTTL: defaultCacheTTL,
		http:     &http.Client{Timeout: 30 * time.Second},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.Named("fixtures")
	return s
}

// Evaluate reports whether the refresh loop should run at the live cadence.
// The feed is refetched only when the cache has expired; a fetch failure
// falls back to the cached matches so one bad poll cannot stall window
// detection.
func (s *Schedule) Evaluate(ctx context.Context) Status {
	matches := s.matches(ctx)
	now := s.now()

	var live, upcoming []Match
	for _, m := range matches {
		if !now.Before(m.WindowStart) && !now.After(m.WindowEnd) {
			live = append(live, m)
		}
		until := m.Kickoff.Sub(now)
		if until >= 0 && until <= upcomingHorizon {
			upcoming = append(upcoming, m)
		}
	}

	status := Status{Live: live, Upcoming: upcoming}
	switch {
	case len(live) > 0:
		status.Active = true
		status.Reason = fmt.Sprintf("%d live match(es)", len(live))
	case len(upcoming) > 0:
		status.Active = true
		status.Reason = fmt.Sprintf("%d match(es) kicking off within %s", len(upcoming), upcomingHorizon)
	default:
		status.Reason = "no live or imminent matches"
	}

	metrics.UpdateMatchWindowActive(status.Active)
	return status
}

// matches returns the cached fixture list, refetching when stale.
func (s *Schedule) matches(ctx context.Context) []Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.fetchedAt.IsZero() || now.Sub(s.fetchedAt) >= s.cacheTTL {
		fresh, err := s.fetch(ctx)
		if err != nil {
			s.log.Warn(ctx, "fixtures feed refresh failed, using cached schedule",
				logger.Error(err), logger.Int("cached_matches", len(s.cached)))
			metrics.RecordErrorByComponent("fixtures", "fetch")
		} else {
			s.cached = fresh
			s.fetchedAt = now
		}
	}

	// Re-filter against the current horizon; the cache may be hours old.
	out := make([]Match, 0, len(s.cached))
	lo, hi := now.Add(-searchBack), now.Add(searchForward)
	for _, m := range s.cached {
		if m.Kickoff.After(lo) && m.Kickoff.Before(hi) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Schedule) fetch(ctx context.Context) ([]Match, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFeed, err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFeed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFeed, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFeed, err)
	}
	matches, err := parseFeed(string(body))
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "fixtures feed refreshed", logger.Int("matches", len(matches)))
	return matches, nil
}

// parseFeed extracts emoji-prefixed match events from an ICS calendar.
func parseFeed(raw string) ([]Match, error) {
	cal, err := ics.ParseCalendar(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFeed, err)
	}

	var matches []Match
	for _, ev := range cal.Events() {
		prop := ev.GetProperty(ics.ComponentPropertySummary)
		if prop == nil || !strings.HasPrefix(prop.Value, matchPrefix) {
			continue
		}
		kickoff, err := ev.GetStartAt()
		if err != nil {
			continue
		}
		matches = append(matches, Match{
			Summary:     prop.Value,
			Kickoff:     kickoff,
			WindowStart: kickoff.Add(-windowBefore),
			WindowEnd:   kickoff.Add(windowAfter),
		})
	}
	return matches, nil
}
