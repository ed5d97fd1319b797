// Package tui implements the terminal rendering surface and the playback loop driving it.
package tui

import (
	"fmt"
	"time"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"

	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/internal/ui"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/open"
	"github.com/marquee-cli/marquee/playback"
	"github.com/marquee-cli/marquee/schedule"
	"github.com/marquee-cli/marquee/socket"
)

// externalMsg wraps a message produced outside the bubbletea loop.
type externalMsg struct{ inner tea.Msg }

// rowsFetchedMsg carries raw playlist rows from a fetch or the push channel.
type rowsFetchedMsg struct{ rows []schedule.Row }

// fetchFailedMsg carries a failed playlist fetch. Whether it matters depends
// on what is already on screen.
type fetchFailedMsg struct{ err error }

// itemsPushedMsg carries pre-mapped creatives from the push channel.
type itemsPushedMsg struct{ items []creative.Item }

// advanceMsg carries a fired advance trigger. Validity is decided by the
// clock, never by the sender.
type advanceMsg struct{ adv playback.Advance }

// revealMsg uncovers the incoming layer one beat after an advance.
type revealMsg struct{ generation uint64 }

// phaseMsg steps the transition phase machine.
type phaseMsg struct {
	phase      playback.Phase
	generation uint64
}

// warmedMsg reports a creative landed in the media cache.
type warmedMsg struct {
	itemID int
	path   string
}

type pollTickMsg time.Time
type wallTickMsg time.Time

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Ephemeral notifications and the sticky backend banner.
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = tea.Batch(cmd, uiCmd)
	}

	switch msg := msg.(type) {
	case externalMsg:
		inner := msg.inner
		return b, tea.Batch(cmd, b.waitForExternalMsg(), func() tea.Msg { return inner })

	case error:
		b.raiseError(msg)
		return b, cmd

	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, cmd

	case spinner.TickMsg:
		if !b.loading {
			return b, cmd
		}
		var spinnerCmd tea.Cmd
		b.spinnerC, spinnerCmd = b.spinnerC.Update(msg)
		return b, tea.Batch(cmd, spinnerCmd)

	case tea.KeyMsg:
		return b.updateKey(msg, cmd)

	case fetchFailedMsg:
		// A poll failure never disturbs playback; the last good playlist stands.
		if !b.cursor.Empty() {
			log.Warnf("playlist poll failed, keeping the last good playlist: %v", msg.err)
			return b, cmd
		}
		log.Errorf("playlist fetch failed: %v", msg.err)
		b.fetchFailed = true
		b.notifier.Update(ui.BackendErrorMsg{Message: msg.err.Error()})
		b.newState(emptyState)
		return b, tea.Batch(cmd, b.stopLoading())

	case rowsFetchedMsg:
		if b.fetchFailed {
			b.fetchFailed = false
			b.notifier.Update(ui.BackendClearMsg{})
		}
		b.catalog = mapRows(msg.rows)
		log.Infof("playlist updated: %d rows, %d mapped", len(msg.rows), len(b.catalog))
		return b, tea.Batch(cmd, b.applyEligible(time.Now()))

	case itemsPushedMsg:
		b.catalog = msg.items
		log.Infof("playlist pushed: %d creatives", len(msg.items))
		return b, tea.Batch(cmd, b.applyEligible(time.Now()))

	case advanceMsg:
		if !b.clock.Accept(msg.adv) {
			return b, cmd
		}
		log.Debugf("advance (%s) from creative %d", msg.adv.Kind, msg.adv.ItemID)
		b.cursor.Advance()
		return b, tea.Batch(cmd, b.presentCurrent())

	case revealMsg:
		if msg.generation == b.armed.Generation {
			b.revealed = true
			if b.transition == playback.StyleNone {
				b.phase = playback.PhaseIdle
				b.outgoing = mo.None[creative.Item]()
			}
		}
		return b, cmd

	case phaseMsg:
		if msg.generation == b.armed.Generation {
			b.phase = msg.phase
			if msg.phase == playback.PhaseIdle {
				b.outgoing = mo.None[creative.Item]()
			}
		}
		return b, cmd

	case warmedMsg:
		b.warmed[msg.itemID] = msg.path
		return b, cmd

	case pollTickMsg:
		if b.socketC != nil {
			if err := b.socketC.Send(socket.Subscribe{DeviceID: b.deviceID}); err != nil {
				log.Debugf("push channel keepalive: %v", err)
			}
		}
		return b, tea.Batch(cmd, b.fetchPlaylist(), b.schedulePoll())

	case wallTickMsg:
		now := time.Time(msg)
		if b.workingSetChanged(now) {
			cmd = tea.Batch(cmd, b.applyEligible(now))
		}
		return b, tea.Batch(cmd, b.scheduleWallTick())
	}

	return b, cmd
}

func (b *statefulBubble) updateKey(msg tea.KeyMsg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch {
	case bubblesKey.Matches(msg, b.keymap.forceQuit), bubblesKey.Matches(msg, b.keymap.quit):
		b.shutdown()
		return b, tea.Quit

	case bubblesKey.Matches(msg, b.keymap.refresh):
		if b.state == errorState || b.state == emptyState {
			b.setState(loadingState)
		}
		return b, tea.Batch(cmd, b.startLoading(), b.fetchPlaylist())

	case bubblesKey.Matches(msg, b.keymap.skip):
		if b.state != playingState {
			return b, cmd
		}
		adv := playback.Advance{
			ItemID:     b.armed.ItemID,
			Generation: b.armed.Generation,
			Kind:       playback.TriggerDeadline,
		}
		return b, tea.Batch(cmd, func() tea.Msg { return advanceMsg{adv: adv} })

	case bubblesKey.Matches(msg, b.keymap.openURL):
		if item, ok := b.onScreen.Get(); ok {
			if err := open.Start(item.CreativeURL); err != nil {
				return b, tea.Batch(cmd, func() tea.Msg { return fmt.Sprintf("open: %v", err) })
			}
		}
		return b, cmd

	case bubblesKey.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return b, cmd
	}

	return b, cmd
}

// workingSetChanged reports whether refiltering the catalog at the given time
// would change the working set. Identity is compared by id sequence.
func (b *statefulBubble) workingSetChanged(now time.Time) bool {
	ids := func(items []creative.Item) []int {
		return lo.Map(items, func(item creative.Item, _ int) int { return item.ID })
	}
	return !slices.Equal(ids(schedule.Filter(b.catalog, now)), ids(b.cursor.Items()))
}

func mapRows(rows []schedule.Row) []creative.Item {
	items := make([]creative.Item, 0, len(rows))
	for _, row := range rows {
		if item, ok := schedule.MapRow(row); ok {
			items = append(items, item)
		}
	}
	return items
}
