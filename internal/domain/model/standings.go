// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// StandingsRow represents one team's raw standings line as reported by the
// upstream data provider, before any forecasting.
type StandingsRow struct {
	Name           string // team name, unique per table
	Position       int    // provider-reported rank; 0 when absent
	Played         int
	Won            int
	Drawn          int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
}

// Team is a single forecast-table row. Field tags mirror the wire schema of
// GET /table.
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

// Table is a full forecast table ordered by forecasted position.
type Table struct {
	Teams       []Team    `json:"forecast_table"`
	LastUpdated time.Time `json:"last_updated"`
	UpdateType  string    `json:"update_type"` // "scheduled" or "live_match"
}

// TotalTeams returns the number of teams in the table.
func (t Table) TotalTeams() int {
	return len(t.Teams)
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
