// Package resolver turns a user-supplied path into a directory that holds a
// servable report.
package resolver

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prettymuchbryce/allureview/internal/archive"
	"github.com/prettymuchbryce/allureview/internal/cleanup"
	"github.com/prettymuchbryce/allureview/internal/fs"
	"github.com/prettymuchbryce/allureview/internal/pathutil"
	"github.com/spf13/afero"
)

// IndexFile is the entry point every report root must contain.
const IndexFile = "index.html"

// Kind classifies a report source.
type Kind string

const (
	KindDirectory Kind = "directory"
	KindArchive   Kind = "archive"
)

// Source is the classified user input.
type Source struct {
	Raw  string
	Abs  string
	Kind Kind
}

// Extraction describes an archive unpacked into the temp root.
type Extraction struct {
	// Root is the directory the archive was extracted into. It is owned by
	// the cleanup registry.
	Root string

	// ReportDir is Root or its single nested child directory.
	ReportDir string
}

// Nested reports whether the report sits one level below the extraction root.
func (e *Extraction) Nested() bool {
	return e.ReportDir != e.Root
}

// Result is the outcome of a successful resolution.
type Result struct {
	Source     Source
	Extraction *Extraction // nil for directory sources
	Dir        string      // validated report root
}

// Options configure a Resolver.
type Options struct {
	// TempRoot is where archives are extracted. Created on demand.
	TempRoot string

	// Ignore holds doublestar patterns for archive entries to skip.
	Ignore []string
}

// Resolver resolves report inputs, registering every temporary path it
// creates with a cleanup registry.
type Resolver struct {
	fs       fs.FileSystem
	registry *cleanup.Registry
	opts     Options
}

// New creates a Resolver.
func New(filesystem fs.FileSystem, registry *cleanup.Registry, opts Options) *Resolver {
	return &Resolver{
		fs:       filesystem,
		registry: registry,
		opts:     opts,
	}
}

// Resolve maps input to a validated report directory.
// Archives are extracted under the temp root; the extraction root is
// registered for cleanup before anything is written into it.
func (r *Resolver) Resolve(input string) (*Result, error) {
	abs, err := r.fs.Abs(pathutil.ExpandTilde(input))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", input, err)
	}

	info, err := r.fs.Stat(abs)
	if err != nil {
		return nil, &InvalidReportError{Path: abs, Reason: "path does not exist"}
	}

	src := Source{Raw: input, Abs: abs, Kind: KindDirectory}
	if archive.IsZipName(abs) && !info.IsDir() {
		src.Kind = KindArchive
	}
	slog.Debug("classified report source", "path", abs, "kind", src.Kind)

	result := &Result{Source: src, Dir: abs}

	if src.Kind == KindArchive {
		ext, err := r.extract(abs)
		if err != nil {
			return nil, err
		}
		result.Extraction = ext
		result.Dir = ext.ReportDir
	}

	if !IsReportRoot(r.fs, result.Dir) {
		return nil, &InvalidReportError{Path: result.Dir}
	}

	return result, nil
}

func (r *Resolver) extract(archivePath string) (*Extraction, error) {
	if err := archive.Validate(r.fs, archivePath); err != nil {
		return nil, &InvalidArchiveError{Path: archivePath, Err: err}
	}

	if err := r.fs.MkdirAll(r.opts.TempRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp root %s: %w", r.opts.TempRoot, err)
	}

	root := filepath.Join(r.opts.TempRoot, archive.DirName(archivePath))

	// Same-named archives share a target; the newest run wins.
	if exists, _ := afero.Exists(r.fs, root); exists {
		slog.Warn("overwriting previous extraction", "path", root)
		if err := r.fs.RemoveAll(root); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", root, err)
		}
	}

	r.registry.Register(root)

	extractor := &archive.Extractor{Fs: r.fs, Ignore: r.opts.Ignore}
	n, err := extractor.Extract(archivePath, root)
	if err != nil {
		return nil, &InvalidArchiveError{Path: archivePath, Err: err}
	}
	slog.Debug("extracted archive", "archive", archivePath, "dest", root, "files", n)

	return &Extraction{Root: root, ReportDir: r.detectNested(root)}, nil
}

// detectNested returns the single child directory of root when it is the
// only entry and is itself a report root; otherwise root.
func (r *Resolver) detectNested(root string) string {
	entries, err := afero.ReadDir(r.fs, root)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return root
	}

	child := filepath.Join(root, entries[0].Name())
	if !IsReportRoot(r.fs, child) {
		return root
	}

	slog.Debug("using nested report directory", "path", child)
	return child
}

// IsReportRoot reports whether dir directly contains an index.html file.
// Subdirectories are not searched.
func IsReportRoot(afs afero.Fs, dir string) bool {
	return fs.IsFile(afs, filepath.Join(dir, IndexFile))
}
