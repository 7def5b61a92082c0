package model

import "time"

// Snapshot is a point-in-time record of the forecast table, kept for
// position-change detection and history queries.
type Snapshot struct {
	ID      string    `json:"snapshot_id"`
	Season  string    `json:"season"`
	TakenAt time.Time `json:"taken_at"`
	Context string    `json:"context,omitempty"` // e.g. "after Arsenal vs Chelsea"
	Teams   []Team    `json:"teams"`
}

// Team returns the snapshot row for the named team.
func (s Snapshot) Team(name string) (Team, bool) {
	return Table{Teams: s.Teams}.Team(name)
}

// PositionChange records a movement in a team's forecasted position between
// two consecutive snapshots.
type PositionChange struct {
	TeamName         string    `json:"team_name"`
	PreviousPosition int       `json:"previous_position"`
	NewPosition      int       `json:"new_position"`
	PreviousPoints   float64   `json:"previous_points"`
	NewPoints        float64   `json:"new_points"`
	Context          string    `json:"context"`
	DetectedAt       time.Time `json:"detected_at"`
}

// Delta returns the signed movement; negative means the team moved up.
func (c PositionChange) Delta() int {
	return c.NewPosition - c.PreviousPosition
}

// Improved reports whether the team moved up the table.
func (c PositionChange) Improved() bool {
	return c.Delta() < 0
}
