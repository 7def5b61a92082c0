package model

import (
	"errors"
	"time"
)

// Timing selects when a user wants position-change notifications delivered.
type Timing string

// Sensitivity selects which position changes a user cares about.
type Sensitivity string

// Supported preference values. Stored as strings for wire and storage
// stability.
const (
	TimingImmediate Timing = "immediate"
	TimingEndOfDay  Timing = "end_of_day"

	SensitivityAnyChange       Sensitivity = "any_change"
	SensitivitySignificantOnly Sensitivity = "significant_only"
)

// Sentinel kinds for preference validation.
var (
	ErrUnknownTeam        = errors.New("unknown team")
	ErrInvalidTiming      = errors.New("invalid notification timing")
	ErrInvalidSensitivity = errors.New("invalid notification sensitivity")
)

// Preferences holds one user's notification settings.
type Preferences struct {
	UserID      string      `json:"user_id"`
	TeamName    string      `json:"team_name"`
	Enabled     bool        `json:"enabled"`
	Timing      Timing      `json:"notification_timing"`
	Sensitivity Sensitivity `json:"notification_sensitivity"`
	PushToken   string      `json:"push_token,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks the preference fields against known values.
func (p Preferences) Validate() error {
	if _, ok := TeamByName(p.TeamName); !ok {
		return ErrUnknownTeam
	}
	switch p.Timing {
	case TimingImmediate, TimingEndOfDay:
	default:
		return ErrInvalidTiming
	}
	switch p.Sensitivity {
	case SensitivityAnyChange, SensitivitySignificantOnly:
	default:
		return ErrInvalidSensitivity
	}
	return nil
}
