package tui

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/filesystem"
	"github.com/marquee-cli/marquee/internal/ui"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/playback"
	"github.com/marquee-cli/marquee/schedule"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.PlaybackFallbackDuration, 10)
}

func testRows() []schedule.Row {
	return []schedule.Row{
		{"id": 1, "creative_type": "jpg", "creative_url": "https://cdn/a.jpg", "media_duration": 4},
		{"id": 2, "creative_type": "mp4", "creative_url": "https://cdn/b.mp4", "media_duration": 15},
		{"id": 3, "creative_type": "tag", "creative_url": "https://ads.example.com/frame"},
	}
}

func loadedBubble() *statefulBubble {
	b := newBubble(&Options{DeviceID: 1})
	b.setState(loadingState)
	_, _ = b.Update(rowsFetchedMsg{rows: testRows()})
	return b
}

// stubSurface records how the loop drives the video surface.
type stubSurface struct {
	running bool
	stopped bool
}

func (s *stubSurface) Play(string, string) error { s.running = true; return nil }

func (s *stubSurface) Seek(float64) error { return nil }

func (s *stubSurface) GetTimePos() (float64, error) { return 0, nil }

func (s *stubSurface) GetDuration() (float64, error) { return 0, nil }

func (s *stubSurface) Stop() error { s.stopped = true; s.running = false; return nil }

func (s *stubSurface) IsRunning() bool { return s.running }

func (s *stubSurface) Wait() <-chan struct{} { return nil }

func (s *stubSurface) Socket() string { return "" }

func (s *stubSurface) Close() error { s.running = false; return nil }

func TestPlaybackLoop(t *testing.T) {
	Convey("Playback loop", t, func() {
		Convey("A fetched playlist starts playback at the first creative", func() {
			b := loadedBubble()

			So(b.state, ShouldEqual, playingState)
			So(b.cursor.Len(), ShouldEqual, 3)

			current, ok := b.onScreen.Get()
			So(ok, ShouldBeTrue)
			So(current.ID, ShouldEqual, 1)
			So(b.transition, ShouldEqual, playback.StyleNone)
		})

		Convey("An accepted advance moves to the next creative with a slide", func() {
			b := loadedBubble()

			adv := playback.Advance{
				ItemID:     b.armed.ItemID,
				Generation: b.armed.Generation,
				Kind:       playback.TriggerDeadline,
			}
			_, _ = b.Update(advanceMsg{adv: adv})

			current, _ := b.onScreen.Get()
			So(current.ID, ShouldEqual, 2)
			So(b.transition, ShouldEqual, playback.StyleSlide)
			So(b.phase, ShouldEqual, playback.PhasePreparing)
			So(b.revealed, ShouldBeFalse)
		})

		Convey("A sibling trigger firing after the winner is ignored", func() {
			b := loadedBubble()

			adv := playback.Advance{
				ItemID:     b.armed.ItemID,
				Generation: b.armed.Generation,
				Kind:       playback.TriggerDeadline,
			}
			_, _ = b.Update(advanceMsg{adv: adv})
			_, _ = b.Update(advanceMsg{adv: adv})

			current, _ := b.onScreen.Get()
			So(current.ID, ShouldEqual, 2)
		})

		Convey("Phase messages step the choreography only for the live generation", func() {
			b := loadedBubble()

			adv := playback.Advance{
				ItemID:     b.armed.ItemID,
				Generation: b.armed.Generation,
				Kind:       playback.TriggerNaturalEnd,
			}
			_, _ = b.Update(advanceMsg{adv: adv})
			generation := b.armed.Generation

			_, _ = b.Update(revealMsg{generation: generation})
			So(b.revealed, ShouldBeTrue)

			_, _ = b.Update(phaseMsg{phase: playback.PhaseTransitioning, generation: generation})
			So(b.phase, ShouldEqual, playback.PhaseTransitioning)

			_, _ = b.Update(phaseMsg{phase: playback.PhaseIdle, generation: generation - 1})
			So(b.phase, ShouldEqual, playback.PhaseTransitioning)

			_, _ = b.Update(phaseMsg{phase: playback.PhaseIdle, generation: generation})
			So(b.phase, ShouldEqual, playback.PhaseIdle)
			So(b.outgoing.IsAbsent(), ShouldBeTrue)
		})

		Convey("A reload keeping the current creative does not restart it", func() {
			b := loadedBubble()
			before := b.armed.Generation

			_, _ = b.Update(rowsFetchedMsg{rows: testRows()})

			current, _ := b.onScreen.Get()
			So(current.ID, ShouldEqual, 1)
			So(b.armed.Generation, ShouldEqual, before)
		})

		Convey("An emptied playlist parks the surface", func() {
			b := loadedBubble()
			surface := &stubSurface{running: true}
			b.surface = surface

			_, _ = b.Update(itemsPushedMsg{items: nil})
			So(b.state, ShouldEqual, emptyState)
			So(b.onScreen.IsAbsent(), ShouldBeTrue)
			So(surface.stopped, ShouldBeTrue)
		})

		Convey("Advancing away from a video idles the surface", func() {
			b := loadedBubble()

			_, _ = b.Update(advanceMsg{adv: playback.Advance{
				ItemID:     b.armed.ItemID,
				Generation: b.armed.Generation,
				Kind:       playback.TriggerDeadline,
			}})
			current, _ := b.onScreen.Get()
			So(current.ID, ShouldEqual, 2)

			surface := &stubSurface{running: true}
			b.surface = surface

			_, _ = b.Update(advanceMsg{adv: playback.Advance{
				ItemID:     b.armed.ItemID,
				Generation: b.armed.Generation,
				Kind:       playback.TriggerNaturalEnd,
			}})
			current, _ = b.onScreen.Get()
			So(current.ID, ShouldEqual, 3)
			So(surface.stopped, ShouldBeTrue)
		})

		Convey("A poll failure leaves the last good playlist playing", func() {
			b := loadedBubble()
			generation := b.armed.Generation

			_, _ = b.Update(fetchFailedMsg{err: errors.New("network unreachable")})
			So(b.state, ShouldEqual, playingState)
			So(b.armed.Generation, ShouldEqual, generation)

			// The pending deadline trigger still rotates the loop.
			_, _ = b.Update(advanceMsg{adv: playback.Advance{
				ItemID:     b.armed.ItemID,
				Generation: b.armed.Generation,
				Kind:       playback.TriggerDeadline,
			}})
			current, _ := b.onScreen.Get()
			So(current.ID, ShouldEqual, 2)
		})

		Convey("An initial fetch failure shows a banner until the next success", func() {
			b := newBubble(&Options{DeviceID: 1})
			b.setState(loadingState)

			_, _ = b.Update(fetchFailedMsg{err: errors.New("connection refused")})
			So(b.state, ShouldEqual, emptyState)
			So(b.notifier.Banner(), ShouldContainSubstring, "connection refused")

			_, _ = b.Update(rowsFetchedMsg{rows: testRows()})
			So(b.state, ShouldEqual, playingState)
			So(b.notifier.Banner(), ShouldBeEmpty)
		})

		Convey("The wall tick drops creatives whose intraday window closed", func() {
			b := loadedBubble()

			rows := testRows()
			rows[0]["end_time"] = "06:00:00"
			b.catalog = mapRows(rows)

			dawn := time.Date(2026, 8, 31, 5, 0, 0, 0, time.Local)
			_ = b.applyEligible(dawn)
			So(b.cursor.Len(), ShouldEqual, 3)

			noon := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
			So(b.workingSetChanged(noon), ShouldBeTrue)

			_, _ = b.Update(wallTickMsg(noon))
			So(b.cursor.Len(), ShouldEqual, 2)
		})
	})
}

func TestBackendBanner(t *testing.T) {
	Convey("Backend banner", t, func() {
		b := loadedBubble()

		Convey("A pushed error raises the banner until a welcome clears it", func() {
			_, _ = b.Update(ui.BackendErrorMsg{Message: "device not registered"})
			So(b.notifier.Banner(), ShouldEqual, "device not registered")

			_, _ = b.Update(ui.BackendClearMsg{})
			So(b.notifier.Banner(), ShouldBeEmpty)
		})
	})
}
