// Package client is a Go client for the EPL forecast service. It caches
// the forecast table with a freshness TTL, keeps at most one fetch in
// flight, and preserves stale data across fetch failures: an error is
// surfaced to the caller only when there is no cached table to serve
// instead.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultTTL  = 15 * time.Minute
	defaultTick = time.Minute
)

// Team is one row of the forecast table as served by GET /table.
type Team struct {
	Name               string  `json:"name"`
	Played             int     `json:"played"`
	Won                int     `json:"won"`
	Drawn              int     `json:"drawn"`
	Lost               int     `json:"lost"`
	GoalsFor           int     `json:"for"`
	GoalsAgainst       int     `json:"against"`
	GoalDifference     int     `json:"goal_difference"`
	Points             int     `json:"points"`
	PointsPerGame      float64 `json:"points_per_game"`
	ForecastedPoints   float64 `json:"forecasted_points"`
	CurrentPosition    int     `json:"current_position"`
	ForecastedPosition int     `json:"forecasted_position"`
}

// Metadata describes the table payload.
type Metadata struct {
	LastUpdated time.Time `json:"last_updated"`
	TotalTeams  int       `json:"total_teams"`
	APIVersion  string    `json:"api_version"`
	Description string    `json:"description"`
	UpdateType  string    `json:"update_type"`
}

// Table is the full forecast table payload.
type Table struct {
	Teams    []Team   `json:"forecast_table"`
	Metadata Metadata `json:"metadata"`
}

// Client fetches and caches the forecast table.
type Client struct {
	baseURL string
	http    *http.Client
	ttl     time.Duration
	tick    time.Duration
	now     func() time.Time

	mu        sync.Mutex
	cached    *Table
	fetchedAt time.Time
	inFlight  bool
	polling   bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a Client. The base URL defaults to a local service.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: "http://localhost:9080",
		http:    &http.Client{Timeout: 10 * time.Second},
		ttl:     defaultTTL,
		tick:    defaultTick,
		now:     time.Now,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the forecast table. A fresh cached table is served
// directly. A stale or missing one triggers a fetch; if the fetch fails
// and a stale table exists, the stale table is returned without error.
func (c *Client) Table(ctx context.Context) (Table, error) {
	c.mu.Lock()
	if c.cached != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		t := *c.cached
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.cached != nil {
			return *c.cached, nil
		}
		return Table{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil {
		return Table{}, ErrNoData
	}
	return *c.cached, nil
}

// Fresh reports whether the cached table is within the freshness TTL.
func (c *Client) Fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached != nil && c.now().Sub(c.fetchedAt) < c.ttl
}

// Age returns the time since the table was last fetched, or a negative
// duration when nothing is cached yet.
func (c *Client) Age() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil {
		return -1
	}
	return c.now().Sub(c.fetchedAt)
}

// Refresh fetches the table unconditionally and replaces the cache on
// success. A failed fetch leaves the cache untouched. If a fetch is
// already in flight the call returns immediately without starting
// another.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	c.mu.Unlock()

	table, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		return err
	}
	c.cached = &table
	c.fetchedAt = c.now()
	return nil
}

func (c *Client) fetch(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/table", http.NoBody)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return Table{}, fmt.Errorf("%w: %d", ErrServerStatus, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return Table{}, fmt.Errorf("%w: %d", ErrClientStatus, resp.StatusCode)
	}

	var table Table
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return table, nil
}

// Start begins a background polling loop that refetches the table
// whenever the cache goes stale. It returns immediately; use Stop to
// shut the loop down. Only the first call starts a loop.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.polling {
		c.mu.Unlock()
		return
	}
	c.polling = true
	c.mu.Unlock()

	go func() {
		defer close(c.doneCh)
		ticker := time.NewTicker(c.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopCh:
				return
			case <-ticker.C:
				if !c.Fresh() {
					_ = c.Refresh(ctx)
				}
			}
		}
	}()
}

// Stop terminates the polling loop and waits for it to exit. Calling
// Stop without a prior Start is a no-op.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.mu.Lock()
	polling := c.polling
	c.mu.Unlock()
	if polling {
		<-c.doneCh
	}
}

// Team returns the row for the named team, matched case-insensitively.
func (t Table) Team(name string) (Team, bool) {
	for _, row := range t.Teams {
		if strings.EqualFold(row.Name, name) {
			return row, true
		}
	}
	return Team{}, false
}
