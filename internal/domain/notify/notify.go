// Package notify decides which forecast position changes turn into user
// notifications and renders their content.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/history"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/zone"
)

// Content is a rendered notification ready for delivery.
type Content struct {
	Title    string                `json:"title"`
	Body     string                `json:"body"`
	TeamName string                `json:"team_name"`
	Type     string                `json:"notification_type"`
	Change   *model.PositionChange `json:"position_change,omitempty"`
}

// Notification pairs rendered content with its recipient; this is the unit
// that flows through the dispatch queue.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PushToken string    `json:"push_token,omitempty"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a queued Notification for a user from rendered content.
func New(prefs model.Preferences, content Content) Notification {
	return Notification{
		ID:        uuid.NewString(),
		UserID:    prefs.UserID,
		PushToken: prefs.PushToken,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// DedupeKey identifies a notification's content for duplicate suppression:
// the same user receiving the same title within the suppression window is a
// duplicate regardless of delivery attempts.
func (n Notification) DedupeKey() string {
	return n.UserID + "|" + n.Content.Title
}

// ShouldNotify applies a user's preferences to a detected change.
func ShouldNotify(prefs model.Preferences, change model.PositionChange, totalTeams int) bool {
	if !prefs.Enabled {
		return false
	}
	if !strings.EqualFold(prefs.TeamName, change.TeamName) {
		return false
	}
	if prefs.Sensitivity == model.SensitivityAnyChange {
		return true
	}
	return history.Significant(change, totalTeams)
}

// PositionChangeContent renders a position change into a title and body.
// Band crossings get specific phrasing; plain moves report the direction.
func PositionChangeContent(change model.PositionChange, totalTeams int) Content {
	title := changeTitle(change, totalTeams)
	direction := "down"
	if change.Improved() {
		direction = "up"
	}
	body := fmt.Sprintf("%s moved %s from %s to %s in the forecasted final table (%.1f pts projected)",
		change.TeamName, direction,
		ordinal(change.PreviousPosition), ordinal(change.NewPosition),
		change.NewPoints)
	if change.Context != "" {
		body += " — " + change.Context
	}
	return Content{
		Title:    title,
		Body:     body,
		TeamName: change.TeamName,
		Type:     "position_change",
		Change:   &change,
	}
}

// TestContent renders a verification notification for a user.
func TestContent(prefs model.Preferences) Content {
	body := fmt.Sprintf("Test notification for %s forecast updates. Settings: %s, %s",
		prefs.TeamName, prefs.Timing, prefs.Sensitivity)
	return Content{
		Title:    fmt.Sprintf("🧪 EPL Forecast Test - %s", prefs.TeamName),
		Body:     body,
		TeamName: prefs.TeamName,
		Type:     "test",
	}
}

func changeTitle(change model.PositionChange, totalTeams int) string {
	team := change.TeamName
	prev, next := change.PreviousPosition, change.NewPosition
	switch {
	case zone.Title(next) && !zone.Title(prev):
		return fmt.Sprintf("🏆 %s forecasted for 1st place!", team)
	case zone.Title(prev) && !zone.Title(next):
		return fmt.Sprintf("📉 %s dropped from 1st place", team)
	case inBand(next, totalTeams, zone.ChampionsLeague) && !inBand(prev, totalTeams, zone.ChampionsLeague):
		return fmt.Sprintf("⭐ %s into Champions League positions!", team)
	case inBand(prev, totalTeams, zone.ChampionsLeague) && !inBand(next, totalTeams, zone.ChampionsLeague):
		return fmt.Sprintf("📉 %s dropped out of Champions League", team)
	case inBand(next, totalTeams, zone.Relegation) && !inBand(prev, totalTeams, zone.Relegation):
		return fmt.Sprintf("⚠️ %s in relegation zone", team)
	case inBand(prev, totalTeams, zone.Relegation) && !inBand(next, totalTeams, zone.Relegation):
		return fmt.Sprintf("📈 %s out of relegation zone!", team)
	case change.Improved():
		return fmt.Sprintf("📈 %s climbed to %s", team, ordinal(next))
	default:
		return fmt.Sprintf("📉 %s dropped to %s", team, ordinal(next))
	}
}

func inBand(position, totalTeams int, band zone.Zone) bool {
	return zone.Classify(position, totalTeams) == band
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
