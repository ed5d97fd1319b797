// Package playback implements the timing core of the signage player: the
// per-item advance clock and the transition selection between consecutive creatives.
package playback

import (
	"time"

	"github.com/marquee-cli/marquee/creative"
)

// Style names the visual choreography applied during an item handoff.
type Style int

const (
	StyleNone Style = iota
	StyleFade
	StyleCrossfade
	StyleSlide
	StyleZoom
)

func (s Style) String() string {
	switch s {
	case StyleFade:
		return "fade"
	case StyleCrossfade:
		return "crossfade"
	case StyleSlide:
		return "slide"
	case StyleZoom:
		return "zoom"
	default:
		return "none"
	}
}

// Timing is the temporal profile of a transition: the incoming layer becomes
// visible after Delay, and the whole handoff completes after Duration.
type Timing struct {
	Delay    time.Duration
	Duration time.Duration
}

// SettleMargin is the extra time after a transition completes before the
// phase machine returns to idle.
const SettleMargin = 100 * time.Millisecond

// Timing returns the temporal profile for the style.
func (s Style) Timing() Timing {
	switch s {
	case StyleCrossfade:
		return Timing{Delay: 333 * time.Millisecond, Duration: 1000 * time.Millisecond}
	case StyleSlide:
		return Timing{Delay: 240 * time.Millisecond, Duration: 1440 * time.Millisecond}
	case StyleZoom:
		return Timing{Delay: 200 * time.Millisecond, Duration: 1320 * time.Millisecond}
	default:
		return Timing{Delay: 300 * time.Millisecond, Duration: 1200 * time.Millisecond}
	}
}

// Select picks the transition style for a handoff from the current to the
// next rendering category. Evaluated once per advance, never persisted.
func Select(current, next creative.Category) Style {
	switch {
	case current == next:
		return StyleCrossfade
	case current == creative.CategoryVideo && next == creative.CategoryImage:
		return StyleZoom
	case current == creative.CategoryImage && next == creative.CategoryVideo:
		return StyleSlide
	case current == creative.CategoryBanner || next == creative.CategoryBanner:
		return StyleSlide
	case current == creative.CategoryPod || next == creative.CategoryPod:
		return StyleZoom
	case current == creative.CategoryTag || next == creative.CategoryTag:
		return StyleFade
	default:
		return StyleFade
	}
}

// Phase tracks the handoff state machine driven by the render loop.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreparing
	PhaseTransitioning
	PhaseCompleting
)

func (p Phase) String() string {
	switch p {
	case PhasePreparing:
		return "preparing"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseCompleting:
		return "completing"
	default:
		return "idle"
	}
}
