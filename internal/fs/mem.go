package fs

import (
	"fmt"

	"github.com/spf13/afero"
)

// MemFileSystem is an in-memory filesystem for testing.
type MemFileSystem struct {
	afero.Fs
}

// Abs resolves path against the in-memory root.
func (m *MemFileSystem) Abs(path string) (string, error) {
	return rootedAbs(path), nil
}

// MustMkdirAll creates a directory and panics on error. For use in tests.
func (m *MemFileSystem) MustMkdirAll(path string) {
	if err := m.Fs.MkdirAll(path, 0755); err != nil {
		panic(fmt.Sprintf("MustMkdirAll(%q): %v", path, err))
	}
}

// MustWriteFile writes content to path and panics on error. For use in tests.
func (m *MemFileSystem) MustWriteFile(path, content string) {
	if err := afero.WriteFile(m.Fs, path, []byte(content), 0644); err != nil {
		panic(fmt.Sprintf("MustWriteFile(%q): %v", path, err))
	}
}
