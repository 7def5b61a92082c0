// Package provider fetches the current league table from the upstream
// standings API and maps it into domain rows.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Client fetches standings over HTTP.
type Client struct {
	url     string
	apiKey  string
	apiHost string
	timeout time.Duration
	http    *http.Client
	log     logger.Logger
}

// New creates a standings client using provided options.
func New(opts ...Option) *Client {
	c := &Client{
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	c.log = logger.Named("provider")
	return c
}

// wire types mirror the upstream JSON: the table lives under
// "league-table".teams, per-team record under "all-matches".
type wireResponse struct {
	LeagueTable struct {
		Teams []wireTeam `json:"teams"`
	} `json:"league-table"`
}

type wireTeam struct {
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Points     int    `json:"total-points"`
	AllMatches struct {
		Played         int `json:"played"`
		Won            int `json:"won"`
		Drawn          int `json:"drawn"`
		Lost           int `json:"lost"`
		For            int `json:"for"`
		Against        int `json:"against"`
		GoalDifference int `json:"goal-difference"`
	} `json:"all-matches"`
}

// Fetch retrieves the current standings. Errors are categorized with the
// package sentinels so callers can distinguish network trouble from upstream
// rejections and malformed bodies.
func (c *Client) Fetch(ctx context.Context) ([]model.StandingsRow, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
	}
	if c.apiHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(ctx, start, "network", err)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		c.observe(ctx, start, "http_5xx", nil)
		return nil, fmt.Errorf("%w: status %d", ErrServerStatus, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		c.observe(ctx, start, "http_4xx", nil)
		return nil, fmt.Errorf("%w: status %d", ErrClientStatus, resp.StatusCode)
	}

	var body wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.observe(ctx, start, "decode", err)
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(body.LeagueTable.Teams) == 0 {
		c.observe(ctx, start, "decode", nil)
		return nil, ErrEmptyTable
	}

	rows := make([]model.StandingsRow, 0, len(body.LeagueTable.Teams))
	for _, t := range body.LeagueTable.Teams {
		rows = append(rows, model.StandingsRow{
			Name:           t.Name,
			Position:       t.Position,
			Played:         t.AllMatches.Played,
			Won:            t.AllMatches.Won,
			Drawn:          t.AllMatches.Drawn,
			Lost:           t.AllMatches.Lost,
			GoalsFor:       t.AllMatches.For,
			GoalsAgainst:   t.AllMatches.Against,
			GoalDifference: t.AllMatches.GoalDifference,
			Points:         t.Points,
		})
	}

	latency := float64(time.Since(start).Milliseconds())
	metrics.RecordProviderFetch("success")
	metrics.RecordProviderFetchLatency(latency)
	c.log.Debug(ctx, "standings fetched",
		logger.Int("teams", len(rows)),
		logger.Float64("latency_ms", latency))
	return rows, nil
}

func (c *Client) observe(ctx context.Context, start time.Time, outcome string, err error) {
	latency := float64(time.Since(start).Milliseconds())
	metrics.RecordProviderFetch(outcome)
	metrics.RecordErrorByComponent("provider", outcome)
	metrics.RecordErrorLatency("provider", outcome, latency)
	fields := []logger.Field{logger.String("outcome", outcome), logger.Float64("latency_ms", latency)}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	c.log.Warn(ctx, "standings fetch failed", fields...)
}
