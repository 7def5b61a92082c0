package queue

import (
	"context"
	"testing"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/notify"
	. "github.com/smartystreets/goconvey/convey"
)

func msg(id string) Message {
	return Message{ID: id, UserID: "device-1", Content: notify.Content{Title: "t"}}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given an in-memory queue", t, func() {
		ctx := context.Background()

		Convey("When messages are enqueued and dequeued", func() {
			q := NewInMemoryQueue(WithCapacity(8))
			So(q.Enqueue(ctx, msg("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, msg("b")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			out := q.Dequeue(ctx)
			first := <-out
			second := <-out

			Convey("Then ordering is FIFO", func() {
				So(first.ID, ShouldEqual, "a")
				So(second.ID, ShouldEqual, "b")
			})
		})

		Convey("When the queue is full", func() {
			q := NewInMemoryQueue(WithCapacity(1))
			So(q.Enqueue(ctx, msg("a")), ShouldBeTrue)

			Convey("Then further enqueues are rejected", func() {
				So(q.Enqueue(ctx, msg("b")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the queue is closed", func() {
			q := NewInMemoryQueue(WithCapacity(4))
			So(q.Enqueue(ctx, msg("a")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then it reports closed and rejects enqueues", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, msg("b")), ShouldBeFalse)
			})

			Convey("Then buffered messages drain before the channel closes", func() {
				out := q.Dequeue(ctx)
				m, ok := <-out
				So(ok, ShouldBeTrue)
				So(m.ID, ShouldEqual, "a")

				select {
				case _, ok := <-out:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})

			Convey("And closing twice is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
