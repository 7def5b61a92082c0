package tablecheck

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func validTeams() []Team {
	names := []string{"Arsenal", "Liverpool", "Manchester City", "Chelsea", "Everton", "Southampton"}
	teams := make([]Team, 0, len(names))
	for i, name := range names {
		points := 27 - 3*i
		ppg := float64(points) / 10
		teams = append(teams, Team{
			Name:               name,
			Played:             10,
			Points:             points,
			GoalDifference:     10 - 3*i,
			PointsPerGame:      ppg,
			ForecastedPoints:   ppg * 38,
			CurrentPosition:    i + 1,
			ForecastedPosition: i + 1,
		})
	}
	return teams
}

func TestTableChecks(t *testing.T) {
	Convey("Given a well-formed table", t, func() {
		teams := validTeams()

		Convey("Then all structural checks pass", func() {
			So(verifyPermutation(teams), ShouldBeNil)
			So(verifyOrdering(teams), ShouldBeNil)
			So(verifyArithmetic(teams, 38), ShouldBeNil)
		})

		Convey("When two teams share a position", func() {
			teams[1].ForecastedPosition = 1
			So(verifyPermutation(teams), ShouldNotBeNil)
		})

		Convey("When a position falls outside the table", func() {
			teams[0].ForecastedPosition = 21
			So(verifyPermutation(teams), ShouldNotBeNil)
		})

		Convey("When forecast points increase down the table", func() {
			teams[2].ForecastedPoints = teams[0].ForecastedPoints + 10
			So(verifyOrdering(teams), ShouldNotBeNil)
		})

		Convey("When a tie is broken against goal difference", func() {
			teams[1].ForecastedPoints = teams[0].ForecastedPoints
			teams[1].GoalDifference = teams[0].GoalDifference + 5
			So(verifyOrdering(teams), ShouldNotBeNil)
		})

		Convey("When points per game does not match the raw points", func() {
			teams[3].PointsPerGame = 9.99
			So(verifyArithmetic(teams, 38), ShouldNotBeNil)
		})

		Convey("When the division does not terminate", func() {
			// Served rounded: 22/12 = 1.8333... -> 1.83, projection
			// 1.8333... * 38 = 69.666... -> 69.7.
			teams[2].Played = 12
			teams[2].Points = 22
			teams[2].PointsPerGame = 1.83
			teams[2].ForecastedPoints = 69.7
			So(verifyArithmetic(teams, 38), ShouldBeNil)

			Convey("And a projection off by a full point still fails", func() {
				teams[2].ForecastedPoints = 68.7
				So(verifyArithmetic(teams, 38), ShouldNotBeNil)
			})
		})

		Convey("When the projection uses the wrong season length", func() {
			So(verifyArithmetic(teams, 40), ShouldNotBeNil)
		})

		Convey("When a team has not played yet", func() {
			teams[5].Played = 0
			teams[5].Points = 0
			teams[5].PointsPerGame = 0
			teams[5].ForecastedPoints = 0
			So(verifyArithmetic(teams, 38), ShouldBeNil)

			teams[5].ForecastedPoints = 50
			So(verifyArithmetic(teams, 38), ShouldNotBeNil)
		})
	})
}

func TestMetadataCheck(t *testing.T) {
	Convey("Given a table response", t, func() {
		resp := &TableResponse{ForecastTable: validTeams()}
		resp.Metadata.TotalTeams = len(resp.ForecastTable)
		resp.Metadata.APIVersion = "1.0"
		resp.Metadata.UpdateType = "scheduled"
		resp.Metadata.LastUpdated = time.Now()

		Convey("Then a complete envelope passes", func() {
			So(verifyMetadata(resp), ShouldBeNil)
		})

		Convey("When the team count disagrees", func() {
			resp.Metadata.TotalTeams = 99
			So(verifyMetadata(resp), ShouldNotBeNil)
		})

		Convey("When the update type is unknown", func() {
			resp.Metadata.UpdateType = "manual"
			So(verifyMetadata(resp), ShouldNotBeNil)
		})
	})
}

func TestZoneBands(t *testing.T) {
	Convey("Given a 20-team table", t, func() {
		Convey("Then positions map to the expected bands", func() {
			So(expectedZone(1, 20), ShouldEqual, zoneChampionsLeague)
			So(expectedZone(4, 20), ShouldEqual, zoneChampionsLeague)
			So(expectedZone(5, 20), ShouldEqual, zoneMidTable)
			So(expectedZone(17, 20), ShouldEqual, zoneMidTable)
			So(expectedZone(18, 20), ShouldEqual, zoneRelegation)
			So(expectedZone(20, 20), ShouldEqual, zoneRelegation)
		})

		Convey("Then a mislabelled team fails the zone check", func() {
			team := &TeamResponse{Zone: zoneMidTable}
			team.Name = "Arsenal"
			team.ForecastedPosition = 1
			So(verifyZone(team, 20), ShouldNotBeNil)

			team.Zone = zoneChampionsLeague
			So(verifyZone(team, 20), ShouldBeNil)
		})
	})
}
