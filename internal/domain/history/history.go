// Package history detects forecasted-position changes between table
// snapshots and classifies their significance.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/zone"
)

// NewSnapshot freezes a forecast table into a snapshot for history storage
// and later comparison.
func NewSnapshot(table model.Table, season, context string) model.Snapshot {
	teams := make([]model.Team, len(table.Teams))
	copy(teams, table.Teams)
	return model.Snapshot{
		ID:      uuid.NewString(),
		Season:  season,
		TakenAt: table.LastUpdated,
		Context: context,
		Teams:   teams,
	}
}

// DetectChanges compares two snapshots and returns one PositionChange per
// team whose forecasted position moved. Teams present in only one snapshot
// are skipped; a league table has a fixed membership within a season.
func DetectChanges(previous, current model.Snapshot) []model.PositionChange {
	var changes []model.PositionChange
	for _, team := range current.Teams {
		prev, ok := previous.Team(team.Name)
		if !ok {
			continue
		}
		if prev.ForecastedPosition == team.ForecastedPosition {
			continue
		}
		changes = append(changes, model.PositionChange{
			TeamName:         team.Name,
			PreviousPosition: prev.ForecastedPosition,
			NewPosition:      team.ForecastedPosition,
			PreviousPoints:   prev.ForecastedPoints,
			NewPoints:        team.ForecastedPoints,
			Context:          current.Context,
			DetectedAt:       current.TakenAt,
		})
	}
	return changes
}

// Significant reports whether a change crosses a significant boundary:
// into or out of first place, the Champions League places, or the
// relegation places.
func Significant(change model.PositionChange, totalTeams int) bool {
	if totalTeams == 0 {
		return false
	}
	prevBands := bands(change.PreviousPosition, totalTeams)
	newBands := bands(change.NewPosition, totalTeams)
	if len(prevBands) != len(newBands) {
		return true
	}
	for band := range prevBands {
		if !newBands[band] {
			return true
		}
	}
	return false
}

func bands(position, totalTeams int) map[string]bool {
	out := make(map[string]bool)
	if zone.Title(position) {
		out["title"] = true
	}
	switch zone.Classify(position, totalTeams) {
	case zone.ChampionsLeague:
		out["champions_league"] = true
	case zone.Relegation:
		out["relegation"] = true
	case zone.MidTable:
	}
	return out
}

// Season derives the "YYYY-YY" season label from a date. The Premier League
// season rolls over in August.
func Season(at time.Time) string {
	year := at.Year()
	if at.Month() < time.August {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}
