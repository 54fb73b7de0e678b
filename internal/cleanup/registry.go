// Package cleanup tracks temporary filesystem paths that must be removed
// before the process exits.
package cleanup

import (
	"log/slog"
	"sync"

	"github.com/spf13/afero"
)

// Registry is an ordered, append-only list of paths scheduled for removal.
// Drain removes every registered path exactly once; later calls are no-ops.
type Registry struct {
	fs afero.Fs

	mu      sync.Mutex
	paths   []string
	drained bool
	once    sync.Once
}

// NewRegistry creates an empty Registry that removes paths through fs.
func NewRegistry(fs afero.Fs) *Registry {
	return &Registry{fs: fs}
}

// Register appends path to the registry.
// Paths registered after Drain are removed immediately.
func (r *Registry) Register(path string) {
	r.mu.Lock()
	drained := r.drained
	if !drained {
		r.paths = append(r.paths, path)
	}
	r.mu.Unlock()

	if drained {
		slog.Warn("path registered after cleanup, removing now", "path", path)
		r.remove(path)
	}
}

// Paths returns a copy of the registered paths in registration order.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Drain recursively removes every registered path, ignoring errors.
// It returns the number of paths it attempted to remove; calls after the
// first return 0.
func (r *Registry) Drain() int {
	n := 0
	r.once.Do(func() {
		r.mu.Lock()
		paths := r.paths
		r.drained = true
		r.mu.Unlock()

		for _, p := range paths {
			r.remove(p)
		}
		n = len(paths)
	})
	return n
}

func (r *Registry) remove(path string) {
	if err := r.fs.RemoveAll(path); err != nil {
		slog.Debug("cleanup failed", "path", path, "error", err)
	}
}
