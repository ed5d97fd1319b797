// Package tui implements the terminal rendering surface and the playback loop driving it.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Options encapsulates the runtime configuration for the playback surface.
type Options struct {
	DeviceID int
}

// Run initializes and executes the playback loop until interrupted.
func Run(options *Options) error {
	bubble := newBubble(options)
	bubble.setState(loadingState)

	defer bubble.shutdown()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}
