// Package tui implements the terminal rendering surface and the playback loop driving it.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init triggers the initial playlist load and starts the recurring schedules.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(
		b.startLoading(),
		b.fetchPlaylist(),
		b.waitForExternalMsg(),
		b.schedulePoll(),
		b.scheduleWallTick(),
	)
}
