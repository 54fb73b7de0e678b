package fs

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// FileSystem extends afero.Fs with the path handling allureview needs.
type FileSystem interface {
	afero.Fs

	// Abs returns an absolute, cleaned form of path.
	// The real filesystem resolves relative paths against the working
	// directory; in-memory filesystems resolve them against the root.
	Abs(path string) (string, error)
}

// NewReal creates a FileSystem that performs actual filesystem operations.
func NewReal() FileSystem {
	return &RealFileSystem{
		Fs: afero.NewOsFs(),
	}
}

// NewDryRun creates a FileSystem that reads the real filesystem but never
// removes anything. Removals are logged instead.
func NewDryRun() FileSystem {
	return &DryRunFileSystem{Fs: afero.NewOsFs()}
}

// NewMem creates an in-memory FileSystem for testing.
func NewMem() FileSystem {
	return &MemFileSystem{Fs: afero.NewMemMapFs()}
}

// NewMemTest returns a MemFileSystem for testing with access to Must* helpers.
func NewMemTest() *MemFileSystem {
	return &MemFileSystem{Fs: afero.NewMemMapFs()}
}

// IsDir reports whether path exists and is a directory.
func IsDir(afs afero.Fs, path string) bool {
	info, err := afs.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path exists and is a regular file.
func IsFile(afs afero.Fs, path string) bool {
	info, err := afs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// rootedAbs resolves path against the filesystem root.
func rootedAbs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(string(filepath.Separator), path)
}
