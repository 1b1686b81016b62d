// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// It utilizes the afero library to allow switching between OS-level and in-memory backends.
package filesystem

import (
	"path/filepath"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the native operating system backend.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs installs a volatile in-memory backend for tests.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// IsNative reports whether paths handed to external processes (engines, players) resolve on disk.
func IsNative() bool {
	_, ok := backend.Fs.(*afero.OsFs)
	return ok
}

// WriteTemp writes data into a new file under dir whose name ends with suffix and returns its path.
func WriteTemp(dir, suffix string, data []byte) (string, error) {
	f, err := backend.TempFile(dir, "*"+suffix)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return filepath.Clean(f.Name()), nil
}
