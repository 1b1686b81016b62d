package filesystem

import (
	"io"
	"os"
)

// GacheFs lets gache caches (resolver responses, the latest version) live on the active backend,
// so tests that switch to SetMemMapFs never touch the real cache directory.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return backend.OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return backend.MkdirAll(path, perm)
}
