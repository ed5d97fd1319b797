package playlist

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/marquee-cli/marquee/creative"
)

func items(ids ...int) []creative.Item {
	out := make([]creative.Item, len(ids))
	for i, id := range ids {
		out[i] = creative.Item{ID: id, CreativeURL: "https://cdn/x"}
	}
	return out
}

func TestCursor(t *testing.T) {
	Convey("Cursor", t, func() {
		var c Cursor

		Convey("Starts empty", func() {
			So(c.Empty(), ShouldBeTrue)
			So(c.Current().IsAbsent(), ShouldBeTrue)
			So(c.Next().IsAbsent(), ShouldBeTrue)
		})

		Convey("Advance wraps circularly and never terminates", func() {
			c.Load(items(1, 2, 3))

			So(c.Current().MustGet().ID, ShouldEqual, 1)
			So(c.Next().MustGet().ID, ShouldEqual, 2)

			c.Advance()
			So(c.Current().MustGet().ID, ShouldEqual, 2)

			c.Advance()
			c.Advance()
			So(c.Current().MustGet().ID, ShouldEqual, 1)
		})

		Convey("Single-item playlist loops onto itself", func() {
			c.Load(items(9))
			So(c.Current().MustGet().ID, ShouldEqual, 9)
			So(c.Next().MustGet().ID, ShouldEqual, 9)
			c.Advance()
			So(c.Current().MustGet().ID, ShouldEqual, 9)
		})

		Convey("Reload keeps the current item by id", func() {
			c.Load(items(1, 2, 3))
			c.Advance() // now at 2

			kept := c.Load(items(3, 2, 1))
			So(kept, ShouldBeTrue)
			So(c.Current().MustGet().ID, ShouldEqual, 2)
			So(c.Index(), ShouldEqual, 1)
		})

		Convey("Reload without the current item resets to the head", func() {
			c.Load(items(1, 2, 3))
			c.Advance()

			kept := c.Load(items(7, 8))
			So(kept, ShouldBeFalse)
			So(c.Current().MustGet().ID, ShouldEqual, 7)
		})

		Convey("Loading an empty list enters the empty state", func() {
			c.Load(items(1, 2))
			c.Load(nil)
			So(c.Empty(), ShouldBeTrue)
			So(c.Current().IsAbsent(), ShouldBeTrue)

			// Advancing an empty cursor is harmless.
			c.Advance()
			So(c.Empty(), ShouldBeTrue)
		})

		Convey("Advance on the empty state stays put after refill", func() {
			c.Load(nil)
			c.Advance()
			c.Load(items(5))
			So(c.Current().MustGet().ID, ShouldEqual, 5)
		})
	})
}
