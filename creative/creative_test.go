package creative

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Classify", t, func() {
		Convey("Declared types take precedence", func() {
			So(Classify("mp4", "https://cdn.example.com/a.jpg"), ShouldEqual, CategoryVideo)
			So(Classify("jpg", ""), ShouldEqual, CategoryImage)
			So(Classify("jpeg", ""), ShouldEqual, CategoryImage)
			So(Classify("png", ""), ShouldEqual, CategoryImage)
			So(Classify("gif", ""), ShouldEqual, CategoryImage)
			So(Classify("default", ""), ShouldEqual, CategoryImage)
			So(Classify("tag", ""), ShouldEqual, CategoryTag)
			So(Classify("banner", ""), ShouldEqual, CategoryBanner)
			So(Classify("digital-pod", ""), ShouldEqual, CategoryPod)
		})

		Convey("Declared type is normalized", func() {
			So(Classify(" MP4 ", ""), ShouldEqual, CategoryVideo)
			So(Classify("Banner", ""), ShouldEqual, CategoryBanner)
		})

		Convey("Unknown types are inferred from the URL extension", func() {
			So(Classify("", "https://cdn.example.com/spot.mp4"), ShouldEqual, CategoryVideo)
			So(Classify("", "https://cdn.example.com/spot.png"), ShouldEqual, CategoryImage)
			So(Classify("video", "https://cdn.example.com/spot.mp4?x=1"), ShouldEqual, CategoryVideo)
		})

		Convey("Other absolute URLs become tags", func() {
			So(Classify("", "https://ssp.example.com/vast/123-display.html"), ShouldEqual, CategoryTag)
			So(Classify("", "https://ads.example.com/API/Mobile/getLink/3/632"), ShouldEqual, CategoryTag)
		})

		Convey("Everything else falls back to image-like default", func() {
			So(Classify("", ""), ShouldEqual, CategoryImage)
			So(Classify("", "relative/path"), ShouldEqual, CategoryImage)
		})
	})
}

func TestCategoryTotality(t *testing.T) {
	Convey("Every item resolves to exactly one category", t, func() {
		samples := []Item{
			{CreativeType: "jpg", CreativeURL: "https://x/a.jpg"},
			{CreativeType: "mp4", CreativeURL: "https://x/a.mp4"},
			{CreativeType: "tag", CreativeURL: "https://x/a.html"},
			{CreativeType: "banner", CreativeURL: "https://x/a.png"},
			{CreativeType: "digital-pod", CreativeURL: "https://x/a.png"},
			{CreativeType: "", CreativeURL: "https://x/a"},
			{CreativeType: "mystery", CreativeURL: ""},
		}

		for _, item := range samples {
			got := item.Category()
			So(got, ShouldBeIn, []Category{CategoryImage, CategoryVideo, CategoryTag, CategoryBanner, CategoryPod})
		}
	})
}

func TestCategoryString(t *testing.T) {
	Convey("Category String", t, func() {
		So(CategoryImage.String(), ShouldEqual, "image")
		So(CategoryVideo.String(), ShouldEqual, "video")
		So(CategoryPod.String(), ShouldEqual, "digital-pod")
	})
}
