package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/marquee-cli/marquee/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		So(SanitizeFilename("https://cdn/a b.jpg"), ShouldNotContainSubstring, " ")
		So(SanitizeFilename("creative?id=42"), ShouldEqual, "creative_id=42")
		So(SanitizeFilename("___x___"), ShouldEqual, "x")
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "creative", "creatives"), ShouldEqual, "1 creative")
		So(Quantify(3, "creative", "creatives"), ShouldEqual, "3 creatives")
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[int]

		Convey("Push and Pop", func() {
			s.Push(1)
			s.Push(2)
			So(s.Len(), ShouldEqual, 2)
			So(s.Pop(), ShouldEqual, 2)
			So(s.Pop(), ShouldEqual, 1)
			So(s.Pop(), ShouldEqual, 0)
		})

		Convey("Peek", func() {
			s.Push(7)
			So(s.Peek(), ShouldEqual, 7)
			So(s.Len(), ShouldEqual, 1)
		})

		Convey("Clear", func() {
			s.Push(1)
			s.Clear()
			So(s.Len(), ShouldEqual, 0)
		})
	})
}
