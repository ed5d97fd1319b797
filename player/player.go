// Package player abstracts the external video surface. The primary backend is
// mpv driven over its JSON-IPC socket; video creatives are handed to it while
// the terminal renders the frame and schedule state.
package player

// Player is the capability set the playback core needs from a video surface.
type Player interface {
	// Play starts playback of the given URL. A running instance receives the
	// new file over IPC instead of spawning a second process.
	Play(url string, title string) error

	// Seek jumps to an absolute position in seconds. Used to honor trim
	// windows that start mid-file.
	Seek(seconds float64) error

	// GetTimePos reports the current playback position in seconds.
	GetTimePos() (float64, error)

	// GetDuration reports the length of the loaded media in seconds.
	GetDuration() (float64, error)

	// Stop unloads the current file and idles the surface, resetting the
	// playback position. The process stays up for the next video.
	Stop() error

	// IsRunning reports whether the surface responds to IPC.
	IsRunning() bool

	// Wait returns a channel closed when the playback process exits.
	Wait() <-chan struct{}

	// Socket returns the IPC channel identifier.
	Socket() string

	// Close shuts the surface down and releases its resources.
	Close() error
}
