// Package tui implements the terminal rendering surface and the playback loop driving it.
package tui

type state int

const (
	loadingState state = iota
	playingState
	emptyState
	errorState
)
