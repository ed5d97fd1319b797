// Package tui implements the terminal rendering surface and the playback loop driving it.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/playback"
	"github.com/marquee-cli/marquee/player"
	"github.com/marquee-cli/marquee/preload"
	"github.com/marquee-cli/marquee/schedule"
)

const (
	// revealDelay keeps the incoming layer hidden for one beat after an
	// advance, so the outgoing frame never shares its first paint.
	revealDelay = 20 * time.Millisecond

	// wallTickInterval drives the clock display and intraday window refiltering.
	wallTickInterval = time.Second

	fetchTimeout = 30 * time.Second
)

// fetchPlaylist requests the raw playlist rows from the backend.
func (b *statefulBubble) fetchPlaylist() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		rows, err := b.apiC.FetchPlaylist(ctx, b.deviceID)
		if err != nil {
			return fetchFailedMsg{err: err}
		}
		return rowsFetchedMsg{rows: rows}
	}
}

// applyEligible refilters the catalog for the given time and swaps the working
// set under the cursor. The item on screen keeps playing undisturbed when it
// survives the swap.
func (b *statefulBubble) applyEligible(now time.Time) tea.Cmd {
	eligible := schedule.Filter(b.catalog, now)
	kept := b.cursor.Load(eligible)

	if b.cursor.Empty() {
		b.clock.Disarm()
		b.stopVideo()
		b.onScreen = mo.None[creative.Item]()
		b.outgoing = mo.None[creative.Item]()
		b.newState(emptyState)
		return b.stopLoading()
	}

	if kept && b.state == playingState {
		return b.stopLoading()
	}

	return b.presentCurrent()
}

// presentCurrent puts the item under the cursor on screen: selects the
// transition, arms the advance triggers, and schedules the phase choreography.
func (b *statefulBubble) presentCurrent() tea.Cmd {
	item, ok := b.cursor.Current().Get()
	if !ok {
		b.clock.Disarm()
		b.newState(emptyState)
		return b.stopLoading()
	}

	previous := b.onScreen
	b.outgoing = previous
	if prev, hadPrevious := previous.Get(); hadPrevious {
		b.transition = playback.Select(prev.Category(), item.Category())

		// A video leaving the screen must not keep playing on the surface
		// unless the incoming item is about to replace it there.
		if prev.Category() == creative.CategoryVideo &&
			!(item.Category() == creative.CategoryVideo && viper.GetBool(key.PlayerVideoExternal)) {
			b.stopVideo()
		}
	} else {
		b.transition = playback.StyleNone
	}

	b.armed = b.clock.Arm(item)
	b.phase = playback.PhasePreparing
	b.revealed = false
	b.shownAt = time.Now()
	b.onScreen = mo.Some(item)
	b.newState(playingState)

	generation := b.armed.Generation
	cmds := []tea.Cmd{
		b.stopLoading(),
		b.scheduleReveal(generation),
		b.scheduleDeadline(b.armed),
		b.warmNext(),
	}

	if b.transition != playback.StyleNone {
		timing := b.transition.Timing()
		cmds = append(cmds,
			b.schedulePhase(playback.PhaseTransitioning, timing.Delay, generation),
			b.schedulePhase(playback.PhaseCompleting, timing.Duration, generation),
			b.schedulePhase(playback.PhaseIdle, timing.Duration+playback.SettleMargin, generation),
		)
	}

	if b.armed.Video && viper.GetBool(key.PlayerVideoExternal) {
		cmds = append(cmds, b.startVideo(b.armed, item))
	}

	return tea.Batch(cmds...)
}

// scheduleDeadline arms the display timer trigger for the item.
func (b *statefulBubble) scheduleDeadline(armed playback.Armed) tea.Cmd {
	adv := playback.Advance{
		ItemID:     armed.ItemID,
		Generation: armed.Generation,
		Kind:       playback.TriggerDeadline,
	}
	return tea.Tick(armed.Deadline, func(time.Time) tea.Msg {
		return advanceMsg{adv: adv}
	})
}

func (b *statefulBubble) scheduleReveal(generation uint64) tea.Cmd {
	return tea.Tick(revealDelay, func(time.Time) tea.Msg {
		return revealMsg{generation: generation}
	})
}

func (b *statefulBubble) schedulePhase(phase playback.Phase, after time.Duration, generation uint64) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return phaseMsg{phase: phase, generation: generation}
	})
}

func (b *statefulBubble) schedulePoll() tea.Cmd {
	interval := time.Duration(viper.GetInt(key.APIPollInterval)) * time.Millisecond
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (b *statefulBubble) scheduleWallTick() tea.Cmd {
	return tea.Tick(wallTickInterval, func(t time.Time) tea.Msg {
		return wallTickMsg(t)
	})
}

// warmNext prefetches the lookahead item into the media cache.
func (b *statefulBubble) warmNext() tea.Cmd {
	next, ok := b.cursor.Next().Get()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		path, err := preload.Warm(context.Background(), next)
		if err != nil {
			log.Warnf("preload creative %d: %v", next.ID, err)
			return nil
		}
		if path == "" {
			return nil
		}
		return warmedMsg{itemID: next.ID, path: path}
	}
}

// stopVideo detaches the event listener and idles the external surface,
// resetting the playback position of whatever it was showing.
func (b *statefulBubble) stopVideo() {
	if b.listener != nil {
		b.listener.Stop()
		b.listener = nil
	}
	if b.surface != nil && b.surface.IsRunning() {
		if err := b.surface.Stop(); err != nil {
			log.Warnf("stop video surface: %v", err)
		}
	}
}

// startVideo hands the item to the external video surface and wires its
// position and natural-end events back into the loop. Surface failures are
// reported as a transient notification; the deadline trigger still advances.
func (b *statefulBubble) startVideo(armed playback.Armed, item creative.Item) tea.Cmd {
	return func() tea.Msg {
		if b.surface == nil {
			b.surface = player.NewMPV()
		}

		target := item.CreativeURL
		if path, warmed := b.warmed[item.ID]; warmed && path != "" {
			target = path
		}

		if err := b.surface.Play(target, displayName(item)); err != nil {
			return fmt.Sprintf("video surface: %v", err)
		}

		if armed.SeekTo > 0 {
			if err := b.surface.Seek(armed.SeekTo); err != nil {
				log.Warnf("seek creative %d to %.2fs: %v", item.ID, armed.SeekTo, err)
			}
		}

		if b.listener != nil {
			b.listener.Stop()
		}

		epsilon := playback.PositionEpsilon.Seconds()
		listener := player.NewEventListener(b.surface.Socket(),
			func(seconds float64) {
				if end, bounded := armed.EndOffset.Get(); bounded && seconds >= end-epsilon {
					b.externalMsgChannel <- advanceMsg{adv: playback.Advance{
						ItemID:     armed.ItemID,
						Generation: armed.Generation,
						Kind:       playback.TriggerPosition,
					}}
				}
			},
			func() {
				b.externalMsgChannel <- advanceMsg{adv: playback.Advance{
					ItemID:     armed.ItemID,
					Generation: armed.Generation,
					Kind:       playback.TriggerNaturalEnd,
				}}
			})
		if err := listener.Start(); err != nil {
			return fmt.Sprintf("video surface events: %v", err)
		}
		b.listener = listener

		return nil
	}
}
