package repository

import (
	"context"
	"testing"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleTable(updated time.Time) model.Table {
	return model.Table{
		Teams: []model.Team{
			{Name: "Arsenal", ForecastedPosition: 1, ForecastedPoints: 95.0},
			{Name: "Liverpool", ForecastedPosition: 2, ForecastedPoints: 87.4},
		},
		LastUpdated: updated,
		UpdateType:  "scheduled",
	}
}

func TestMemTable(t *testing.T) {
	Convey("Given an empty table store", t, func() {
		ctx := context.Background()
		current := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
		store := NewMemTable(WithTableClock(func() time.Time { return current }))

		Convey("Then Current reports no table", func() {
			_, ok := store.Current(ctx)
			So(ok, ShouldBeFalse)
			So(store.Age(ctx), ShouldBeLessThan, 0)
		})

		Convey("When a table is swapped in", func() {
			So(store.Swap(ctx, sampleTable(current)), ShouldBeNil)

			Convey("Then Current returns it", func() {
				got, ok := store.Current(ctx)
				So(ok, ShouldBeTrue)
				So(got.Teams, ShouldHaveLength, 2)
				So(got.Teams[0].Name, ShouldEqual, "Arsenal")
			})

			Convey("Then Age tracks the refresh time", func() {
				current = current.Add(5 * time.Minute)
				So(store.Age(ctx), ShouldEqual, 5*time.Minute)
			})

			Convey("And callers cannot mutate the cached rows", func() {
				got, _ := store.Current(ctx)
				got.Teams[0].Name = "Mutated"
				again, _ := store.Current(ctx)
				So(again.Teams[0].Name, ShouldEqual, "Arsenal")
			})

			Convey("And a second swap replaces the first", func() {
				next := sampleTable(current.Add(time.Hour))
				next.Teams = next.Teams[:1]
				So(store.Swap(ctx, next), ShouldBeNil)
				got, _ := store.Current(ctx)
				So(got.Teams, ShouldHaveLength, 1)
			})
		})
	})
}
