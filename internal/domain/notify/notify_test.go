package notify_test

import (
	"testing"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/notify"
	. "github.com/smartystreets/goconvey/convey"
)

func prefs(team string, sensitivity model.Sensitivity) model.Preferences {
	return model.Preferences{
		UserID:      "device-1",
		TeamName:    team,
		Enabled:     true,
		Timing:      model.TimingImmediate,
		Sensitivity: sensitivity,
	}
}

func move(team string, from, to int) model.PositionChange {
	return model.PositionChange{TeamName: team, PreviousPosition: from, NewPosition: to, NewPoints: 72.5}
}

func TestShouldNotify(t *testing.T) {
	Convey("Given a user tracking Arsenal", t, func() {
		Convey("When notifications are disabled", func() {
			p := prefs("Arsenal", model.SensitivityAnyChange)
			p.Enabled = false
			So(notify.ShouldNotify(p, move("Arsenal", 5, 4), 20), ShouldBeFalse)
		})

		Convey("When another team moves", func() {
			So(notify.ShouldNotify(prefs("Arsenal", model.SensitivityAnyChange), move("Chelsea", 5, 4), 20), ShouldBeFalse)
		})

		Convey("When sensitivity is any_change", func() {
			So(notify.ShouldNotify(prefs("Arsenal", model.SensitivityAnyChange), move("Arsenal", 8, 7), 20), ShouldBeTrue)
		})

		Convey("When sensitivity is significant_only", func() {
			p := prefs("Arsenal", model.SensitivitySignificantOnly)

			Convey("Then mid-table shuffles are suppressed", func() {
				So(notify.ShouldNotify(p, move("Arsenal", 8, 7), 20), ShouldBeFalse)
			})

			Convey("Then band crossings get through", func() {
				So(notify.ShouldNotify(p, move("Arsenal", 5, 4), 20), ShouldBeTrue)
				So(notify.ShouldNotify(p, move("Arsenal", 17, 18), 20), ShouldBeTrue)
				So(notify.ShouldNotify(p, move("Arsenal", 2, 1), 20), ShouldBeTrue)
			})
		})

		Convey("And team matching ignores case", func() {
			So(notify.ShouldNotify(prefs("arsenal", model.SensitivityAnyChange), move("Arsenal", 8, 7), 20), ShouldBeTrue)
		})
	})
}

func TestPositionChangeContent(t *testing.T) {
	Convey("Given rendered position-change content", t, func() {
		Convey("When a team enters the Champions League places", func() {
			c := notify.PositionChangeContent(move("Arsenal", 5, 4), 20)
			So(c.Title, ShouldContainSubstring, "into Champions League positions")
			So(c.Type, ShouldEqual, "position_change")
			So(c.TeamName, ShouldEqual, "Arsenal")
			So(c.Change, ShouldNotBeNil)
		})

		Convey("When a team takes first place", func() {
			c := notify.PositionChangeContent(move("Liverpool", 2, 1), 20)
			So(c.Title, ShouldContainSubstring, "forecasted for 1st place")
		})

		Convey("When a team falls into the relegation zone", func() {
			c := notify.PositionChangeContent(move("Everton", 17, 18), 20)
			So(c.Title, ShouldContainSubstring, "in relegation zone")
		})

		Convey("When a team escapes the relegation zone", func() {
			c := notify.PositionChangeContent(move("Everton", 18, 17), 20)
			So(c.Title, ShouldContainSubstring, "out of relegation zone")
		})

		Convey("When a team moves inside mid-table", func() {
			up := notify.PositionChangeContent(move("Fulham", 9, 7), 20)
			So(up.Title, ShouldContainSubstring, "climbed to 7th")
			So(up.Body, ShouldContainSubstring, "moved up from 9th to 7th")

			down := notify.PositionChangeContent(move("Fulham", 7, 9), 20)
			So(down.Title, ShouldContainSubstring, "dropped to 9th")
		})

		Convey("And context is appended to the body when present", func() {
			change := move("Fulham", 9, 7)
			change.Context = "after Fulham vs Chelsea"
			c := notify.PositionChangeContent(change, 20)
			So(c.Body, ShouldContainSubstring, "after Fulham vs Chelsea")
		})
	})

	Convey("Given a test notification", t, func() {
		c := notify.TestContent(prefs("Arsenal", model.SensitivityAnyChange))
		So(c.Type, ShouldEqual, "test")
		So(c.Title, ShouldContainSubstring, "Arsenal")
		So(c.Body, ShouldContainSubstring, "immediate")
	})
}

func TestLimiter(t *testing.T) {
	Convey("Given a limiter with small budgets", t, func() {
		current := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
		l := notify.NewLimiter(
			notify.WithHourlyLimit(2),
			notify.WithDailyLimit(3),
			notify.WithMinGap(time.Minute),
			notify.WithLimiterClock(func() time.Time { return current }),
		)

		Convey("When sends are properly spaced", func() {
			ok, _ := l.Allow("u1")
			So(ok, ShouldBeTrue)
			current = current.Add(2 * time.Minute)
			ok, _ = l.Allow("u1")
			So(ok, ShouldBeTrue)

			Convey("Then the hourly budget eventually runs out", func() {
				current = current.Add(2 * time.Minute)
				ok, reason := l.Allow("u1")
				So(ok, ShouldBeFalse)
				So(reason, ShouldContainSubstring, "hourly")
			})
		})

		Convey("When sends are too close together", func() {
			ok, _ := l.Allow("u1")
			So(ok, ShouldBeTrue)
			current = current.Add(10 * time.Second)
			ok, reason := l.Allow("u1")
			So(ok, ShouldBeFalse)
			So(reason, ShouldContainSubstring, "spacing")
		})

		Convey("When the daily cap is reached", func() {
			for i := 0; i < 3; i++ {
				l.Allow("u1")
				current = current.Add(45 * time.Minute)
			}
			ok, reason := l.Allow("u1")
			So(ok, ShouldBeFalse)
			So(reason, ShouldContainSubstring, "daily")

			Convey("Then the budget resets at midnight", func() {
				current = current.Add(24 * time.Hour)
				ok, _ := l.Allow("u1")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("And users are budgeted independently", func() {
			ok, _ := l.Allow("u1")
			So(ok, ShouldBeTrue)
			ok, _ = l.Allow("u2")
			So(ok, ShouldBeTrue)
		})
	})
}
