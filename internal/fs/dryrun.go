package fs

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

// DryRunFileSystem reads the real filesystem but never removes anything.
type DryRunFileSystem struct {
	afero.Fs
}

// Abs resolves path against the current working directory.
func (d *DryRunFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// Remove is a no-op in dry-run mode.
func (d *DryRunFileSystem) Remove(name string) error {
	slog.Info("would remove", "path", name)
	return nil
}

// RemoveAll is a no-op in dry-run mode.
func (d *DryRunFileSystem) RemoveAll(path string) error {
	slog.Info("would remove all", "path", path)
	return nil
}

// Unwrap returns the underlying afero filesystem.
func (d *DryRunFileSystem) Unwrap() afero.Fs {
	return d.Fs
}
