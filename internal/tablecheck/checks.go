package tablecheck

import (
	"fmt"
	"log"
	"math"
)

// Tolerance for floating point comparisons of derived values. The wire
// contract serves points_per_game rounded to 2 decimals and
// forecasted_points to 1, so the checker accepts half a rounding step.
const (
	epsilon           = 1e-6
	ppgTolerance      = 0.005
	forecastTolerance = 0.05
)

// Zone band labels as served by the per-team endpoint.
const (
	zoneChampionsLeague = "Champions League"
	zoneMidTable        = "mid-table"
	zoneRelegation      = "Relegation"
)

const (
	championsLeagueSlots = 4
	relegationSlots      = 3
)

// verifyPermutation checks that forecasted positions are exactly 1..N.
func verifyPermutation(teams []Team) error {
	seen := make(map[int]string, len(teams))
	for _, t := range teams {
		if t.ForecastedPosition < 1 || t.ForecastedPosition > len(teams) {
			return fmt.Errorf("%s has forecasted position %d outside 1..%d",
				t.Name, t.ForecastedPosition, len(teams))
		}
		if other, dup := seen[t.ForecastedPosition]; dup {
			return fmt.Errorf("%s and %s share forecasted position %d",
				t.Name, other, t.ForecastedPosition)
		}
		seen[t.ForecastedPosition] = t.Name
	}
	return nil
}

// verifyOrdering checks that the table is served in forecasted-position
// order with non-increasing forecasted points, goal difference breaking
// ties.
func verifyOrdering(teams []Team) error {
	for i := 1; i < len(teams); i++ {
		prev, cur := teams[i-1], teams[i]
		if cur.ForecastedPosition != prev.ForecastedPosition+1 {
			return fmt.Errorf("positions not sequential: %s at %d follows %s at %d",
				cur.Name, cur.ForecastedPosition, prev.Name, prev.ForecastedPosition)
		}
		if cur.ForecastedPoints > prev.ForecastedPoints+epsilon {
			return fmt.Errorf("%s (%.2f pts) ranked below %s (%.2f pts)",
				cur.Name, cur.ForecastedPoints, prev.Name, prev.ForecastedPoints)
		}
		if math.Abs(cur.ForecastedPoints-prev.ForecastedPoints) <= epsilon &&
			cur.GoalDifference > prev.GoalDifference {
			return fmt.Errorf("tie between %s and %s broken against goal difference",
				prev.Name, cur.Name)
		}
	}
	return nil
}

// verifyArithmetic checks points-per-game and the season projection for
// every row.
func verifyArithmetic(teams []Team, seasonLen int) error {
	for _, t := range teams {
		if t.Played == 0 {
			if t.PointsPerGame != 0 || t.ForecastedPoints != 0 {
				return fmt.Errorf("%s has played no games but nonzero projection", t.Name)
			}
			continue
		}
		wantPPG := float64(t.Points) / float64(t.Played)
		if math.Abs(t.PointsPerGame-wantPPG) > ppgTolerance {
			return fmt.Errorf("%s points_per_game %.2f, want %.2f",
				t.Name, t.PointsPerGame, wantPPG)
		}
		// The projection is computed from the unrounded quotient.
		wantForecast := wantPPG * float64(seasonLen)
		if math.Abs(t.ForecastedPoints-wantForecast) > forecastTolerance {
			return fmt.Errorf("%s forecasted_points %.1f, want %.1f",
				t.Name, t.ForecastedPoints, wantForecast)
		}
	}
	return nil
}

// verifyMetadata checks the table envelope.
func verifyMetadata(resp *TableResponse) error {
	if resp.Metadata.TotalTeams != len(resp.ForecastTable) {
		return fmt.Errorf("metadata reports %d teams, table has %d",
			resp.Metadata.TotalTeams, len(resp.ForecastTable))
	}
	if resp.Metadata.APIVersion == "" {
		return fmt.Errorf("metadata missing api_version")
	}
	switch resp.Metadata.UpdateType {
	case "scheduled", "live_match":
	default:
		return fmt.Errorf("unexpected update_type %q", resp.Metadata.UpdateType)
	}
	if resp.Metadata.LastUpdated.IsZero() {
		return fmt.Errorf("metadata missing last_updated")
	}
	return nil
}

// expectedZone returns the zone band for a position in a table of the
// given size.
func expectedZone(position, total int) string {
	switch {
	case position <= championsLeagueSlots:
		return zoneChampionsLeague
	case position > total-relegationSlots:
		return zoneRelegation
	default:
		return zoneMidTable
	}
}

// verifyZone checks a single per-team response against the band its table
// position implies.
func verifyZone(team *TeamResponse, total int) error {
	want := expectedZone(team.ForecastedPosition, total)
	if team.Zone != want {
		return fmt.Errorf("%s at position %d has zone %q, want %q",
			team.Name, team.ForecastedPosition, team.Zone, want)
	}
	return nil
}

// runCheck executes one named check and records the outcome.
func runCheck(name string, stats *Stats, check func() error) {
	stats.ChecksRun++
	if err := check(); err != nil {
		stats.ChecksFailed++
		log.Printf("❌ %s: %v", name, err)
		return
	}
	stats.ChecksPassed++
	log.Printf("✅ %s", name)
}
