// Package filesystem virtualizes every filesystem touch point behind afero,
// so the media cache, preload manifest, logs and config can run against an
// in-memory backend in tests.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero backend. All path writes in the
// application go through it; nothing touches the os package directly.
func API() afero.Afero {
	return backend
}

// SetOsFs switches to the native operating system backend.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a volatile in-memory backend.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}
