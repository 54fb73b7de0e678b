package fs

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// RealFileSystem performs actual filesystem operations.
type RealFileSystem struct {
	afero.Fs
}

// Abs resolves path against the current working directory.
func (r *RealFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// MkdirAll performs the recursive mkdir operation.
func (r *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	slog.Debug("creating directory", "path", path)
	return r.Fs.MkdirAll(path, perm)
}

// Remove performs the remove operation.
func (r *RealFileSystem) Remove(name string) error {
	slog.Debug("removing", "path", name)
	return r.Fs.Remove(name)
}

// RemoveAll performs the recursive remove operation.
func (r *RealFileSystem) RemoveAll(path string) error {
	slog.Debug("removing all", "path", path)
	return r.Fs.RemoveAll(path)
}

// Unwrap returns the underlying afero filesystem.
func (r *RealFileSystem) Unwrap() afero.Fs {
	return r.Fs
}
