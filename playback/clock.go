package playback

import (
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/log"
)

// TriggerKind identifies which of the competing advance sources fired.
type TriggerKind int

const (
	// TriggerDeadline is the per-item display timer.
	TriggerDeadline TriggerKind = iota
	// TriggerNaturalEnd is the video surface reporting end of playback.
	TriggerNaturalEnd
	// TriggerPosition is the playback position reaching the trim end offset.
	TriggerPosition
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerNaturalEnd:
		return "natural-end"
	case TriggerPosition:
		return "position"
	default:
		return "deadline"
	}
}

// PositionEpsilon is subtracted from the trim end offset when checking the
// playback position, so the position trigger fires just ahead of the frame
// that would overshoot the window.
const PositionEpsilon = 50 * time.Millisecond

// Advance is an advance request produced by a fired trigger. Every trigger
// carries the item id and generation it was armed for, so a stale callback
// firing after a fast reload identifies itself and is rejected.
type Advance struct {
	ItemID     int
	Generation uint64
	Kind       TriggerKind
}

// Armed describes the trigger set owned by the current item.
type Armed struct {
	ItemID     int
	Generation uint64

	// Deadline is the display timer for the item.
	Deadline time.Duration

	// Video reports whether the item plays on the external video surface,
	// which contributes the natural-end and position triggers.
	Video bool

	// SeekTo is the in-media start offset, in seconds, applied once the
	// surface reports the file loaded.
	SeekTo float64

	// EndOffset is the in-media end offset, in seconds, that the position
	// trigger watches for.
	EndOffset mo.Option[float64]
}

// Clock owns the advance trigger for the current item.
//
// Invariant: at most one trigger set is armed at any time, and for a given
// item exactly one advance is honored. Arming a new item invalidates every
// trigger belonging to the previous one; accepting an advance invalidates
// its siblings atomically.
type Clock struct {
	mu         sync.Mutex
	generation uint64
	itemID     int
	armed      bool
}

// Arm cancels all previously armed triggers and arms a new set for the item.
func (c *Clock) Arm(item creative.Item) Armed {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.itemID = item.ID
	c.armed = true

	armed := Armed{
		ItemID:     item.ID,
		Generation: c.generation,
		Deadline:   Deadline(item),
	}

	if item.Category() == creative.CategoryVideo {
		armed.Video = true
		if item.StartTimeSec != nil && *item.StartTimeSec >= 0 {
			armed.SeekTo = *item.StartTimeSec
		}
		if item.EndTimeSec != nil && *item.EndTimeSec > 0 {
			armed.EndOffset = mo.Some(*item.EndTimeSec)
		}
	}

	log.Debugf("armed creative %d gen %d deadline %s", armed.ItemID, armed.Generation, armed.Deadline)
	return armed
}

// Accept reports whether the advance belongs to the live trigger set.
// A successful accept atomically disarms the set, so sibling triggers for the
// same item can no longer cause a double advance.
func (c *Clock) Accept(adv Advance) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.armed || adv.ItemID != c.itemID || adv.Generation != c.generation {
		log.Debugf("rejected stale %s trigger for creative %d gen %d", adv.Kind, adv.ItemID, adv.Generation)
		return false
	}

	c.armed = false
	c.generation++
	return true
}

// Disarm cancels the live trigger set without honoring any advance.
// Used when the playlist empties or playback stops.
func (c *Clock) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.armed = false
	c.generation++
}

// Deadline computes the display timer for an item.
//
// Static media and tags display for their media duration. Videos display for
// the trim window when both offsets are valid, else their media duration;
// the surface's natural-end and position triggers may cut either short.
// A zero or negative result is clamped to the configured minimum so a
// misconfigured item can never wedge the loop.
func Deadline(item creative.Item) time.Duration {
	seconds := item.MediaDuration

	if item.Category() == creative.CategoryVideo &&
		item.StartTimeSec != nil && item.EndTimeSec != nil {
		if window := *item.EndTimeSec - *item.StartTimeSec; window > 0 {
			seconds = window
		}
	}

	if seconds <= 0 {
		return minimumDuration()
	}
	return time.Duration(seconds * float64(time.Second))
}

func minimumDuration() time.Duration {
	if v := viper.GetFloat64(key.PlaybackMinimumDuration); v > 0 {
		return time.Duration(v * float64(time.Second))
	}
	return time.Second
}
