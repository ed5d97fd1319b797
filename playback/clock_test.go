package playback

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/marquee-cli/marquee/creative"
)

func sec(v float64) *float64 { return &v }

func TestDeadline(t *testing.T) {
	Convey("Deadline", t, func() {
		Convey("Static media uses the media duration", func() {
			item := creative.Item{CreativeType: "jpg", CreativeURL: "u", MediaDuration: 4}
			So(Deadline(item), ShouldEqual, 4*time.Second)
		})

		Convey("Zero duration clamps to the minimum", func() {
			item := creative.Item{CreativeType: "tag", CreativeURL: "u"}
			So(Deadline(item), ShouldEqual, time.Second)
		})

		Convey("Video prefers the trim window", func() {
			item := creative.Item{
				CreativeType:  "mp4",
				CreativeURL:   "u",
				MediaDuration: 30,
				StartTimeSec:  sec(5),
				EndTimeSec:    sec(18),
			}
			So(Deadline(item), ShouldEqual, 13*time.Second)
		})

		Convey("Video with an inverted trim window falls back to the media duration", func() {
			item := creative.Item{
				CreativeType:  "mp4",
				CreativeURL:   "u",
				MediaDuration: 30,
				StartTimeSec:  sec(18),
				EndTimeSec:    sec(5),
			}
			So(Deadline(item), ShouldEqual, 30*time.Second)
		})
	})
}

func TestClockArm(t *testing.T) {
	Convey("Clock arming", t, func() {
		var c Clock

		Convey("Static items arm only the deadline", func() {
			armed := c.Arm(creative.Item{ID: 1, CreativeType: "jpg", CreativeURL: "u", MediaDuration: 4})
			So(armed.Video, ShouldBeFalse)
			So(armed.EndOffset.IsAbsent(), ShouldBeTrue)
		})

		Convey("Video items expose the surface triggers", func() {
			armed := c.Arm(creative.Item{
				ID:           2,
				CreativeType: "mp4",
				CreativeURL:  "u",
				StartTimeSec: sec(5),
				EndTimeSec:   sec(18),
			})
			So(armed.Video, ShouldBeTrue)
			So(armed.SeekTo, ShouldEqual, 5)
			So(armed.EndOffset.MustGet(), ShouldEqual, 18)
		})

		Convey("Re-arming bumps the generation", func() {
			first := c.Arm(creative.Item{ID: 1, CreativeURL: "u"})
			second := c.Arm(creative.Item{ID: 2, CreativeURL: "u"})
			So(second.Generation, ShouldBeGreaterThan, first.Generation)
		})
	})
}

func TestAtMostOneAdvance(t *testing.T) {
	Convey("At-most-one-advance", t, func() {
		var c Clock

		video := creative.Item{
			ID:            7,
			CreativeType:  "mp4",
			CreativeURL:   "u",
			MediaDuration: 13,
		}

		Convey("The first trigger wins, siblings are invalidated", func() {
			armed := c.Arm(video)

			// Natural end fires before the deadline.
			natural := Advance{ItemID: armed.ItemID, Generation: armed.Generation, Kind: TriggerNaturalEnd}
			deadline := Advance{ItemID: armed.ItemID, Generation: armed.Generation, Kind: TriggerDeadline}
			position := Advance{ItemID: armed.ItemID, Generation: armed.Generation, Kind: TriggerPosition}

			So(c.Accept(natural), ShouldBeTrue)
			So(c.Accept(deadline), ShouldBeFalse)
			So(c.Accept(position), ShouldBeFalse)
		})

		Convey("Arming a new item invalidates the previous item's triggers", func() {
			stale := c.Arm(video)
			c.Arm(creative.Item{ID: 8, CreativeURL: "u"})

			So(c.Accept(Advance{ItemID: stale.ItemID, Generation: stale.Generation}), ShouldBeFalse)
		})

		Convey("A trigger for the same item from a previous generation is stale", func() {
			old := c.Arm(video)
			fresh := c.Arm(video)

			So(c.Accept(Advance{ItemID: video.ID, Generation: old.Generation}), ShouldBeFalse)
			So(c.Accept(Advance{ItemID: video.ID, Generation: fresh.Generation}), ShouldBeTrue)
		})

		Convey("Disarm cancels without advancing", func() {
			armed := c.Arm(video)
			c.Disarm()
			So(c.Accept(Advance{ItemID: armed.ItemID, Generation: armed.Generation}), ShouldBeFalse)
		})
	})
}
