package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change summarizes the events seen during one debounce window.
type Change struct {
	Events int
	Paths  []string // distinct paths, sorted
	// IndexMissing is true when index.html no longer exists under the root
	// at the end of the window.
	IndexMissing bool
}

// Watcher reports changes under a served report root.
// Events are coalesced: onChange runs once per quiet period of length debounce.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	indexPath string
	debounce  time.Duration
	onChange  func(Change)

	pending map[string]struct{}
	events  int
}

// New creates a Watcher for root and every directory below it.
// A nil onChange logs each change.
func New(root, indexFile string, debounce time.Duration, onChange func(Change)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if onChange == nil {
		onChange = LogChange
	}

	w := &Watcher{
		fsWatcher: fsw,
		root:      root,
		indexPath: filepath.Join(root, indexFile),
		debounce:  debounce,
		onChange:  onChange,
		pending:   make(map[string]struct{}),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and all of its subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsWatcher.Add(path)
		}
		return nil
	})
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Debug("watching report", "root", w.root, "debounce", w.debounce)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.fsWatcher.Close()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.record(event)
			timer.Reset(w.debounce)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)

		case <-timer.C:
			w.flush()
		}
	}
}

func (w *Watcher) record(event fsnotify.Event) {
	w.events++
	w.pending[event.Name] = struct{}{}

	// New directories need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Debug("failed to watch new directory", "path", event.Name, "error", err)
			}
		}
	}
}

func (w *Watcher) flush() {
	if w.events == 0 {
		return
	}

	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	_, err := os.Stat(w.indexPath)
	change := Change{
		Events:       w.events,
		Paths:        paths,
		IndexMissing: os.IsNotExist(err),
	}

	w.pending = make(map[string]struct{})
	w.events = 0

	w.onChange(change)
}

// LogChange is the default change handler.
func LogChange(c Change) {
	if c.IndexMissing {
		slog.Warn("report entry point removed; the browser will show errors until it returns", "events", c.Events)
		return
	}
	slog.Info("report changed on disk; reload the browser to see it", "events", c.Events, "paths", len(c.Paths))
}
