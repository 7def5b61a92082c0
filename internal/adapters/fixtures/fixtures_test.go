package fixtures

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// feedWith builds a minimal ICS calendar with one event per (summary, start).
func feedWith(events ...[2]string) string {
	body := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n"
	for i, ev := range events {
		body += fmt.Sprintf(
			"BEGIN:VEVENT\r\nUID:ev-%d\r\nSUMMARY:%s\r\nDTSTART:%s\r\nDTEND:%s\r\nEND:VEVENT\r\n",
			i, ev[0], ev[1], ev[1])
	}
	return body + "END:VCALENDAR\r\n"
}

func icsTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func TestParseFeed(t *testing.T) {
	Convey("Given a fixtures calendar", t, func() {
		kickoff := time.Date(2025, 11, 1, 15, 0, 0, 0, time.UTC)
		feed := feedWith(
			[2]string{"⚽️ Arsenal v Chelsea", icsTime(kickoff)},
			[2]string{"Transfer deadline day", icsTime(kickoff.Add(time.Hour))},
		)

		matches, err := parseFeed(feed)

		Convey("Then only emoji-prefixed match events survive", func() {
			So(err, ShouldBeNil)
			So(matches, ShouldHaveLength, 1)
			So(matches[0].Summary, ShouldContainSubstring, "Arsenal v Chelsea")
		})

		Convey("And the window brackets kickoff", func() {
			So(matches[0].WindowStart.Equal(kickoff.Add(-15*time.Minute)), ShouldBeTrue)
			So(matches[0].WindowEnd.Equal(kickoff.Add(2*time.Hour+30*time.Minute)), ShouldBeTrue)
		})
	})

	Convey("Given a malformed feed", t, func() {
		_, err := parseFeed("not a calendar")
		So(err, ShouldWrap, ErrParseFeed)
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given a schedule with one fixture", t, func() {
		kickoff := time.Date(2025, 11, 1, 15, 0, 0, 0, time.UTC)
		feed := feedWith([2]string{"⚽️ Arsenal v Chelsea", icsTime(kickoff)})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(feed))
		}))
		defer srv.Close()

		current := kickoff.Add(-2 * time.Hour)
		s := New(WithURL(srv.URL), WithClock(func() time.Time { return current }))

		Convey("When well before kickoff", func() {
			status := s.Evaluate(context.Background())
			So(status.Active, ShouldBeFalse)
			So(status.Reason, ShouldContainSubstring, "no live")
		})

		Convey("When kickoff is ten minutes away", func() {
			current = kickoff.Add(-10 * time.Minute)
			status := s.Evaluate(context.Background())
			So(status.Active, ShouldBeTrue)
			So(status.Upcoming, ShouldHaveLength, 1)
			So(status.Live, ShouldHaveLength, 1) // window opened 15 min out
		})

		Convey("When the match is underway", func() {
			current = kickoff.Add(time.Hour)
			status := s.Evaluate(context.Background())
			So(status.Active, ShouldBeTrue)
			So(status.Live, ShouldHaveLength, 1)
			So(status.Upcoming, ShouldBeEmpty)
			So(status.Context(), ShouldEqual, "during Arsenal v Chelsea")
		})

		Convey("When the window has closed", func() {
			current = kickoff.Add(3 * time.Hour)
			status := s.Evaluate(context.Background())
			So(status.Active, ShouldBeFalse)
		})
	})
}

func TestFeedCaching(t *testing.T) {
	Convey("Given a cached feed", t, func() {
		kickoff := time.Date(2025, 11, 1, 15, 0, 0, 0, time.UTC)
		var fetches atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fetches.Add(1)
			_, _ = w.Write([]byte(feedWith([2]string{"⚽️ Arsenal v Chelsea", icsTime(kickoff)})))
		}))
		defer srv.Close()

		current := kickoff.Add(-time.Hour)
		s := New(WithURL(srv.URL), WithClock(func() time.Time { return current }))

		Convey("When evaluated repeatedly inside the TTL", func() {
			s.Evaluate(context.Background())
			current = current.Add(time.Minute)
			s.Evaluate(context.Background())
			current = current.Add(time.Minute)
			s.Evaluate(context.Background())

			Convey("Then the feed is fetched once", func() {
				So(fetches.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the TTL lapses", func() {
			s.Evaluate(context.Background())
			current = current.Add(30 * time.Hour)
			s.Evaluate(context.Background())

			Convey("Then the feed is refetched", func() {
				So(fetches.Load(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a feed that goes away after the first fetch", t, func() {
		kickoff := time.Date(2025, 11, 1, 15, 0, 0, 0, time.UTC)
		var fail atomic.Bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if fail.Load() {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(feedWith([2]string{"⚽️ Arsenal v Chelsea", icsTime(kickoff)})))
		}))
		defer srv.Close()

		current := kickoff.Add(-time.Hour)
		s := New(WithURL(srv.URL), WithCacheTTL(time.Minute), WithClock(func() time.Time { return current }))
		s.Evaluate(context.Background())
		fail.Store(true)

		Convey("When the refetch fails during a live window", func() {
			current = kickoff.Add(30 * time.Minute)
			status := s.Evaluate(context.Background())

			Convey("Then the cached schedule still drives the evaluation", func() {
				So(status.Active, ShouldBeTrue)
				So(status.Live, ShouldHaveLength, 1)
			})
		})
	})
}
