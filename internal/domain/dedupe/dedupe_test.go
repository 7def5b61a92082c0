package dedupe_test

import (
	"context"
	"testing"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWindowDeduper(t *testing.T) {
	Convey("Given a deduper with a one-hour window", t, func() {
		current := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
		d := dedupe.NewWindowDeduper(
			dedupe.WithWindow(time.Hour),
			dedupe.WithClock(func() time.Time { return current }),
		)
		ctx := context.Background()

		Convey("When a key is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "user-1|Arsenal into Champions League positions!")

			Convey("Then it is not a duplicate", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again inside the window is a duplicate", func() {
				current = current.Add(30 * time.Minute)
				So(d.SeenAndRecord(ctx, "user-1|Arsenal into Champions League positions!"), ShouldBeTrue)
			})

			Convey("And recording it after the window expires is fresh", func() {
				current = current.Add(61 * time.Minute)
				So(d.SeenAndRecord(ctx, "user-1|Arsenal into Champions League positions!"), ShouldBeFalse)
			})
		})

		Convey("When different keys are recorded", func() {
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)

			Convey("Then they do not interfere", func() {
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When a recorded key is unrecorded", func() {
			d.SeenAndRecord(ctx, "retry-me")
			d.Unrecord(ctx, "retry-me")

			Convey("Then it can be recorded again immediately", func() {
				So(d.SeenAndRecord(ctx, "retry-me"), ShouldBeFalse)
			})
		})

		Convey("When expired entries accumulate", func() {
			d2 := dedupe.NewWindowDeduper(
				dedupe.WithWindow(time.Hour),
				dedupe.WithPruneInterval(time.Minute),
				dedupe.WithClock(func() time.Time { return current }),
			)
			d2.SeenAndRecord(ctx, "old-1")
			d2.SeenAndRecord(ctx, "old-2")
			current = current.Add(2 * time.Hour)

			Convey("Then a later record sweeps them", func() {
				d2.SeenAndRecord(ctx, "fresh")
				So(d2.Size(), ShouldEqual, 1)
			})
		})
	})
}
