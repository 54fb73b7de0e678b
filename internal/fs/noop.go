package fs

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// ErrUnexpectedAccess is the cause of every NoopFileSystem error.
var ErrUnexpectedAccess = errors.New("unexpected filesystem access")

// NoopFileSystem rejects every operation and records what was attempted.
// Tests use it where the code under test must not touch the filesystem.
type NoopFileSystem struct {
	mu    sync.Mutex
	calls []string
}

// NewNoop creates a NoopFileSystem.
func NewNoop() *NoopFileSystem {
	return &NoopFileSystem{}
}

// Calls returns the attempted operations as "op path" strings.
func (n *NoopFileSystem) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func (n *NoopFileSystem) deny(op, path string) error {
	n.mu.Lock()
	n.calls = append(n.calls, op+" "+path)
	n.mu.Unlock()
	return &os.PathError{Op: op, Path: path, Err: ErrUnexpectedAccess}
}

func (n *NoopFileSystem) Name() string { return "NoopFileSystem" }

func (n *NoopFileSystem) Abs(path string) (string, error) { return "", n.deny("abs", path) }

func (n *NoopFileSystem) Create(name string) (afero.File, error) { return nil, n.deny("create", name) }

func (n *NoopFileSystem) Open(name string) (afero.File, error) { return nil, n.deny("open", name) }

func (n *NoopFileSystem) OpenFile(name string, _ int, _ os.FileMode) (afero.File, error) {
	return nil, n.deny("open", name)
}

func (n *NoopFileSystem) Stat(name string) (os.FileInfo, error) { return nil, n.deny("stat", name) }

func (n *NoopFileSystem) Mkdir(name string, _ os.FileMode) error { return n.deny("mkdir", name) }

func (n *NoopFileSystem) MkdirAll(path string, _ os.FileMode) error { return n.deny("mkdir", path) }

func (n *NoopFileSystem) Remove(name string) error { return n.deny("remove", name) }

func (n *NoopFileSystem) RemoveAll(path string) error { return n.deny("remove", path) }

func (n *NoopFileSystem) Rename(oldname, _ string) error { return n.deny("rename", oldname) }

func (n *NoopFileSystem) Chmod(name string, _ os.FileMode) error { return n.deny("chmod", name) }

func (n *NoopFileSystem) Chown(name string, _, _ int) error { return n.deny("chown", name) }

func (n *NoopFileSystem) Chtimes(name string, _, _ time.Time) error {
	return n.deny("chtimes", name)
}
