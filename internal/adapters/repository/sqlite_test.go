package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openTestStore(t *testing.T, opts ...SQLiteOption) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "eplf.db"), opts...)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func snapshotAt(id string, at time.Time) model.Snapshot {
	return model.Snapshot{
		ID:      id,
		Season:  "2025-26",
		TakenAt: at,
		Context: "scheduled",
		Teams: []model.Team{
			{Name: "Arsenal", ForecastedPosition: 1, ForecastedPoints: 95.0},
			{Name: "Liverpool", ForecastedPosition: 2, ForecastedPoints: 87.4},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	Convey("Given a history store", t, func() {
		ctx := context.Background()
		store := openTestStore(t)

		Convey("When no snapshots exist", func() {
			_, err := store.LatestSnapshot(ctx)
			So(err, ShouldWrap, ErrNotFound)
		})

		Convey("When a snapshot is saved", func() {
			at := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
			So(store.SaveSnapshot(ctx, snapshotAt("snap-1", at)), ShouldBeNil)

			Convey("Then it comes back as the latest", func() {
				got, err := store.LatestSnapshot(ctx)
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "snap-1")
				So(got.Season, ShouldEqual, "2025-26")
				So(got.TakenAt.Equal(at), ShouldBeTrue)
				So(got.Teams, ShouldHaveLength, 2)
				So(got.Teams[0].ForecastedPoints, ShouldEqual, 95.0)
			})

			Convey("And newer snapshots supersede it", func() {
				So(store.SaveSnapshot(ctx, snapshotAt("snap-2", at.Add(time.Hour))), ShouldBeNil)
				got, err := store.LatestSnapshot(ctx)
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "snap-2")

				all, err := store.Snapshots(ctx, 10)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2)
				So(all[0].ID, ShouldEqual, "snap-2")
				So(all[1].ID, ShouldEqual, "snap-1")
			})
		})
	})
}

func TestSnapshotRetention(t *testing.T) {
	Convey("Given a store with a small retention cap", t, func() {
		ctx := context.Background()
		store := openTestStore(t, WithSnapshotRetention(3))
		base := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

		Convey("When more snapshots than the cap are saved", func() {
			for i := 0; i < 5; i++ {
				snap := snapshotAt(fmt.Sprintf("snap-%d", i), base.Add(time.Duration(i)*time.Hour))
				So(store.SaveSnapshot(ctx, snap), ShouldBeNil)
			}

			Convey("Then only the newest survive", func() {
				all, err := store.Snapshots(ctx, 10)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 3)
				So(all[0].ID, ShouldEqual, "snap-4")
				So(all[2].ID, ShouldEqual, "snap-2")
			})
		})
	})
}

func TestPreferencesCRUD(t *testing.T) {
	Convey("Given a history store", t, func() {
		ctx := context.Background()
		store := openTestStore(t)
		prefs := model.Preferences{
			UserID:      "device-1",
			TeamName:    "Arsenal",
			Enabled:     true,
			Timing:      model.TimingImmediate,
			Sensitivity: model.SensitivityAnyChange,
			PushToken:   "tok-1",
		}

		Convey("When preferences are missing", func() {
			_, err := store.GetPreferences(ctx, "device-1")
			So(err, ShouldWrap, ErrNotFound)
		})

		Convey("When preferences are stored", func() {
			So(store.PutPreferences(ctx, prefs), ShouldBeNil)

			Convey("Then they round-trip", func() {
				got, err := store.GetPreferences(ctx, "device-1")
				So(err, ShouldBeNil)
				So(got.TeamName, ShouldEqual, "Arsenal")
				So(got.Enabled, ShouldBeTrue)
				So(got.Timing, ShouldEqual, model.TimingImmediate)
				So(got.Sensitivity, ShouldEqual, model.SensitivityAnyChange)
				So(got.CreatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And an update replaces fields but keeps created_at", func() {
				before, _ := store.GetPreferences(ctx, "device-1")
				update := prefs
				update.TeamName = "Everton"
				update.Sensitivity = model.SensitivitySignificantOnly
				update.CreatedAt = before.CreatedAt
				So(store.PutPreferences(ctx, update), ShouldBeNil)

				got, err := store.GetPreferences(ctx, "device-1")
				So(err, ShouldBeNil)
				So(got.TeamName, ShouldEqual, "Everton")
				So(got.Sensitivity, ShouldEqual, model.SensitivitySignificantOnly)
				So(got.CreatedAt.Equal(before.CreatedAt), ShouldBeTrue)
			})

			Convey("And listing returns every user", func() {
				other := prefs
				other.UserID = "device-2"
				other.TeamName = "Liverpool"
				So(store.PutPreferences(ctx, other), ShouldBeNil)

				all, err := store.ListPreferences(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2)
				So(all[0].UserID, ShouldEqual, "device-1")
				So(all[1].UserID, ShouldEqual, "device-2")
			})

			Convey("And deletion removes the record", func() {
				So(store.DeletePreferences(ctx, "device-1"), ShouldBeNil)
				_, err := store.GetPreferences(ctx, "device-1")
				So(err, ShouldWrap, ErrNotFound)

				// Deleting again is a no-op.
				So(store.DeletePreferences(ctx, "device-1"), ShouldBeNil)
			})
		})
	})
}
