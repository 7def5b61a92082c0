// Package forecast projects current league standings to a full-season table
// using points per game.
package forecast

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
)

// Default projection configuration constants.
const (
	defaultSeasonLength = 38 // full Premier League season
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithSeasonLength overrides the number of games the projection targets.
func WithSeasonLength(games int) Option {
	return func(c *Calculator) {
		if games > 0 {
			c.seasonLength = games
		}
	}
}

// WithClock overrides the timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// Calculator computes forecast tables from raw standings.
type Calculator struct {
	seasonLength int
	now          func() time.Time
}

// New creates a Calculator with default configuration.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		seasonLength: defaultSeasonLength,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute builds a forecast table from raw standings rows.
//
// Points per game is points/played, 0 for teams yet to play; forecasted
// points is PPG projected across the configured season length, so a team
// with no games played forecasts to 0. PPG is rounded to two decimals and
// forecasted points to one, matching the published API.
//
// Forecasted position orders by forecasted points desc, then goal
// difference desc, then goals for desc, then name asc. The final name key
// keeps the ordering total, so positions are always a permutation of 1..N.
func (c *Calculator) Compute(rows []model.StandingsRow, updateType string) model.Table {
	teams := make([]model.Team, 0, len(rows))
	for _, row := range rows {
		ppg := 0.0
		projected := 0.0
		if row.Played > 0 {
			ppg = float64(row.Points) / float64(row.Played)
			projected = ppg * float64(c.seasonLength)
		}
		teams = append(teams, model.Team{
			Name:             row.Name,
			Played:           row.Played,
			Won:              row.Won,
			Drawn:            row.Drawn,
			Lost:             row.Lost,
			GoalsFor:         row.GoalsFor,
			GoalsAgainst:     row.GoalsAgainst,
			GoalDifference:   row.GoalDifference,
			Points:           row.Points,
			PointsPerGame:    roundTo(ppg, 2),
			ForecastedPoints: roundTo(projected, 1),
			CurrentPosition:  row.Position,
		})
	}

	fillCurrentPositions(teams)

	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.ForecastedPoints != b.ForecastedPoints {
			return a.ForecastedPoints > b.ForecastedPoints
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for i := range teams {
		teams[i].ForecastedPosition = i + 1
	}

	return model.Table{
		Teams:       teams,
		LastUpdated: c.now().UTC(),
		UpdateType:  updateType,
	}
}

// fillCurrentPositions ranks teams by current form when the provider did not
// report positions. Ordering: points desc, goal difference desc, goals for
// desc, name asc.
func fillCurrentPositions(teams []model.Team) {
	for _, t := range teams {
		if t.CurrentPosition > 0 {
			return // provider positions present, trust them
		}
	}

	idx := make([]int, len(teams))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		a, b := teams[idx[x]], teams[idx[y]]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for rank, i := range idx {
		teams[i].CurrentPosition = rank + 1
	}
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
