package playback

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/marquee-cli/marquee/creative"
)

func TestSelect(t *testing.T) {
	Convey("Transition selection", t, func() {
		Convey("Same category crossfades", func() {
			So(Select(creative.CategoryImage, creative.CategoryImage), ShouldEqual, StyleCrossfade)
			So(Select(creative.CategoryVideo, creative.CategoryVideo), ShouldEqual, StyleCrossfade)
			So(Select(creative.CategoryTag, creative.CategoryTag), ShouldEqual, StyleCrossfade)
		})

		Convey("Video to image zooms", func() {
			So(Select(creative.CategoryVideo, creative.CategoryImage), ShouldEqual, StyleZoom)
		})

		Convey("Image to video slides", func() {
			So(Select(creative.CategoryImage, creative.CategoryVideo), ShouldEqual, StyleSlide)
		})

		Convey("Banner on either side slides", func() {
			So(Select(creative.CategoryBanner, creative.CategoryVideo), ShouldEqual, StyleSlide)
			So(Select(creative.CategoryTag, creative.CategoryBanner), ShouldEqual, StyleSlide)
		})

		Convey("Digital pod on either side zooms", func() {
			So(Select(creative.CategoryPod, creative.CategoryImage), ShouldEqual, StyleZoom)
			So(Select(creative.CategoryVideo, creative.CategoryPod), ShouldEqual, StyleZoom)
		})

		Convey("Tag on either side fades", func() {
			So(Select(creative.CategoryTag, creative.CategoryImage), ShouldEqual, StyleFade)
			So(Select(creative.CategoryVideo, creative.CategoryTag), ShouldEqual, StyleFade)
		})

		Convey("Selection is deterministic", func() {
			for i := 0; i < 10; i++ {
				So(Select(creative.CategoryVideo, creative.CategoryImage), ShouldEqual, StyleZoom)
			}
		})
	})
}

func TestTiming(t *testing.T) {
	Convey("Timing profiles", t, func() {
		So(StyleFade.Timing(), ShouldResemble, Timing{Delay: 300 * time.Millisecond, Duration: 1200 * time.Millisecond})
		So(StyleCrossfade.Timing(), ShouldResemble, Timing{Delay: 333 * time.Millisecond, Duration: 1000 * time.Millisecond})
		So(StyleSlide.Timing(), ShouldResemble, Timing{Delay: 240 * time.Millisecond, Duration: 1440 * time.Millisecond})
		So(StyleZoom.Timing(), ShouldResemble, Timing{Delay: 200 * time.Millisecond, Duration: 1320 * time.Millisecond})
	})
}
