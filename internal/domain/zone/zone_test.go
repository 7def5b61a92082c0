package zone_test

import (
	"testing"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/zone"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given a 20-team league", t, func() {
		const totalTeams = 20

		Convey("Then positions 1-4 are Champions League", func() {
			for pos := 1; pos <= 4; pos++ {
				So(zone.Classify(pos, totalTeams), ShouldEqual, zone.ChampionsLeague)
			}
		})

		Convey("Then positions 18-20 are Relegation", func() {
			for pos := 18; pos <= 20; pos++ {
				So(zone.Classify(pos, totalTeams), ShouldEqual, zone.Relegation)
			}
		})

		Convey("Then everything in between is mid-table", func() {
			for pos := 5; pos <= 17; pos++ {
				So(zone.Classify(pos, totalTeams), ShouldEqual, zone.MidTable)
			}
		})

		Convey("Then out-of-range positions fall back to mid-table", func() {
			So(zone.Classify(0, totalTeams), ShouldEqual, zone.MidTable)
			So(zone.Classify(21, totalTeams), ShouldEqual, zone.MidTable)
			So(zone.Classify(-3, totalTeams), ShouldEqual, zone.MidTable)
		})
	})

	Convey("Given a smaller league", t, func() {
		Convey("Then the relegation band tracks the league size", func() {
			So(zone.Classify(10, 12), ShouldEqual, zone.Relegation)
			So(zone.Classify(9, 12), ShouldEqual, zone.MidTable)
		})
	})

	Convey("Given the title check", t, func() {
		So(zone.Title(1), ShouldBeTrue)
		So(zone.Title(2), ShouldBeFalse)
	})
}
