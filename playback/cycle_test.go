package playback

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/playlist"
)

// TestPlaybackCycle drives the cursor and clock the way the render loop does,
// checking that a mixed playlist cycles indefinitely with no item skipped or
// duplicated and every handoff matching the selection table.
func TestPlaybackCycle(t *testing.T) {
	Convey("End-to-end playback cycle", t, func() {
		items := []creative.Item{
			{ID: 1, CreativeType: "jpg", CreativeURL: "https://cdn/a.jpg", MediaDuration: 4},
			{ID: 2, CreativeType: "mp4", CreativeURL: "https://cdn/b.mp4", MediaDuration: 13},
			{ID: 3, CreativeType: "tag", CreativeURL: "https://cdn/c.html", MediaDuration: 10},
		}

		var (
			cursor playlist.Cursor
			clock  Clock
		)
		cursor.Load(items)

		expectedStyles := map[[2]int]Style{
			{1, 2}: StyleSlide, // image -> video
			{2, 3}: StyleFade,  // video -> tag
			{3, 1}: StyleFade,  // tag -> image
		}

		var seen []int
		for i := 0; i < 100; i++ {
			current := cursor.Current().MustGet()
			next := cursor.Next().MustGet()
			seen = append(seen, current.ID)

			armed := clock.Arm(current)
			style := Select(current.Category(), next.Category())
			So(style, ShouldEqual, expectedStyles[[2]int{current.ID, next.ID}])

			// The deadline fires; exactly one advance is honored.
			So(clock.Accept(Advance{ItemID: armed.ItemID, Generation: armed.Generation, Kind: TriggerDeadline}), ShouldBeTrue)
			So(clock.Accept(Advance{ItemID: armed.ItemID, Generation: armed.Generation, Kind: TriggerNaturalEnd}), ShouldBeFalse)

			cursor.Advance()
		}

		Convey("The rotation is 1, 2, 3, 1, 2, 3, ... with no skips or duplicates", func() {
			for i, id := range seen {
				So(id, ShouldEqual, items[i%len(items)].ID)
			}
		})
	})
}

// TestReloadMidCycle covers a playlist replacement arriving between advances.
func TestReloadMidCycle(t *testing.T) {
	Convey("Reload during playback", t, func() {
		var (
			cursor playlist.Cursor
			clock  Clock
		)

		cursor.Load([]creative.Item{
			{ID: 1, CreativeType: "jpg", CreativeURL: "u", MediaDuration: 4},
			{ID: 2, CreativeType: "jpg", CreativeURL: "u", MediaDuration: 4},
		})

		stale := clock.Arm(cursor.Current().MustGet())

		// A refresh lands mid-display, reordering but keeping the current item.
		cursor.Load([]creative.Item{
			{ID: 2, CreativeType: "jpg", CreativeURL: "u", MediaDuration: 4},
			{ID: 1, CreativeType: "jpg", CreativeURL: "u", MediaDuration: 4},
		})
		So(cursor.Current().MustGet().ID, ShouldEqual, 1)

		// The loop re-arms for the (unchanged) current item; the stale
		// deadline from before the reload must not advance the cursor.
		fresh := clock.Arm(cursor.Current().MustGet())
		So(clock.Accept(Advance{ItemID: stale.ItemID, Generation: stale.Generation, Kind: TriggerDeadline}), ShouldBeFalse)
		So(clock.Accept(Advance{ItemID: fresh.ItemID, Generation: fresh.Generation, Kind: TriggerDeadline}), ShouldBeTrue)
	})
}
