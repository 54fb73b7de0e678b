// Package archive validates and extracts ZIP report bundles.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

const zipMIME = "application/zip"

var dosEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrNotZip is returned when a file's content is not a ZIP archive,
	// regardless of its extension.
	ErrNotZip = errors.New("not a zip archive")

	// ErrUnsafeEntry is returned when an entry would be written outside the
	// extraction directory.
	ErrUnsafeEntry = errors.New("unsafe archive entry")
)

// IsZipName reports whether path has a .zip extension (case-insensitive).
func IsZipName(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// DirName returns the extraction directory name for an archive:
// its base name without the final extension.
func DirName(archivePath string) string {
	base := filepath.Base(archivePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate checks that the file at path is a well-formed ZIP archive by
// parsing its central directory; the extension is not consulted. Data
// prepended to the archive, as in self-extracting bundles, is accepted.
// When parsing fails the error names the sniffed content type.
func Validate(afs afero.Fs, path string) error {
	f, err := afs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, parseErr := openReader(f)
	if parseErr == nil || errors.Is(parseErr, ErrUnsafeEntry) {
		return parseErr
	}

	detected, err := mimetype.DetectReader(f)
	if err != nil || isZipType(detected) {
		return parseErr
	}
	return fmt.Errorf("%w: detected %s", ErrNotZip, detected.String())
}

// isZipType reports whether m is application/zip or a format built on it.
func isZipType(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(zipMIME) {
			return true
		}
	}
	return false
}

func openReader(f afero.File) (*zip.Reader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(f, info.Size())
	if errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %v", ErrUnsafeEntry, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotZip, err)
	}
	return zr, nil
}

// Extractor writes the contents of a ZIP archive into a directory.
type Extractor struct {
	Fs afero.Fs

	// Ignore holds doublestar patterns matched against each entry's
	// slash-separated path and each of its parent directories.
	Ignore []string
}

// Extract writes every entry of the archive at archivePath under dest,
// creating dest if needed. It returns the number of files written.
func (e *Extractor) Extract(archivePath, dest string) (int, error) {
	f, err := e.Fs.Open(archivePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	zr, err := openReader(f)
	if err != nil {
		return 0, err
	}

	if err := e.Fs.MkdirAll(dest, 0755); err != nil {
		return 0, err
	}

	written := 0
	for _, entry := range zr.File {
		name := strings.TrimSuffix(entry.Name, "/")
		if name == "" || name == "." {
			continue
		}

		skip, err := e.ignored(name)
		if err != nil {
			return written, err
		}
		if skip {
			slog.Debug("skipping ignored entry", "entry", entry.Name)
			continue
		}

		local := filepath.FromSlash(name)
		if !filepath.IsLocal(local) {
			return written, fmt.Errorf("%w: %s", ErrUnsafeEntry, entry.Name)
		}
		target := filepath.Join(dest, local)

		mode := entry.Mode()
		switch {
		case mode.IsDir():
			if err := e.Fs.MkdirAll(target, 0755); err != nil {
				return written, err
			}
		case mode&os.ModeSymlink != 0:
			slog.Debug("skipping symlink entry", "entry", entry.Name)
		default:
			if err := e.writeFile(entry, target); err != nil {
				return written, fmt.Errorf("failed to extract %s: %w", entry.Name, err)
			}
			written++
		}
	}

	return written, nil
}

// ignored reports whether name or any of its parent directories matches
// an ignore pattern.
func (e *Extractor) ignored(name string) (bool, error) {
	if len(e.Ignore) == 0 {
		return false, nil
	}

	parts := strings.Split(name, "/")
	for i := 1; i <= len(parts); i++ {
		candidate := strings.Join(parts[:i], "/")
		for _, pattern := range e.Ignore {
			matched, err := doublestar.Match(pattern, candidate)
			if err != nil {
				return false, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
			}
			if matched {
				return true, nil
			}
		}
	}
	return false, nil
}

func (e *Extractor) writeFile(entry *zip.File, target string) error {
	if err := e.Fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	perm := entry.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}

	dst, err := e.Fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	// Entries written without a timestamp decode to a date before the DOS epoch.
	if entry.Modified.Before(dosEpoch) {
		return nil
	}
	return e.Fs.Chtimes(target, entry.Modified, entry.Modified)
}
