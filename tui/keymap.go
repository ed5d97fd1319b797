// Package tui implements the terminal rendering surface and the playback loop driving it.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// statefulKeymap defines the keyboard interactions available within each surface state.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	refresh,
	skip,
	openURL,
	showHelp key.Binding
}

// setState updates the active keymap configuration to match the surface state.
func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh playlist"),
		),
		skip: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next creative"),
		),
		openURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open url"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit))
	case playingState:
		return h(k.skip, k.refresh, k.quit), h(k.skip, k.refresh, k.openURL, k.showHelp, k.quit)
	case emptyState:
		return to2(h(k.refresh, k.quit))
	case errorState:
		return to2(h(k.refresh, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
