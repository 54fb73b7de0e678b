package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// Entry describes a file or directory inside a report fixture.
type Entry struct {
	Name    string // slash-separated path relative to the fixture root
	IsDir   bool
	Content string

	// Modified is stored in the archive header when set.
	Modified time.Time
}

// File creates an Entry for a file at the given slash-separated path.
func File(name string) Entry {
	return Entry{Name: name}
}

// Dir creates an Entry for a directory at the given slash-separated path.
func Dir(name string) Entry {
	return Entry{Name: name, IsDir: true}
}

// WithContent sets the file content.
func (e Entry) WithContent(content string) Entry {
	e.Content = content
	return e
}

// WithModified sets the modification time recorded in archives.
func (e Entry) WithModified(t time.Time) Entry {
	e.Modified = t
	return e
}

// ReportEntries returns a minimal report bundle placed under prefix.
// An empty prefix places index.html at the top level.
func ReportEntries(prefix string) []Entry {
	join := func(name string) string {
		if prefix == "" {
			return name
		}
		return strings.TrimSuffix(prefix, "/") + "/" + name
	}
	return []Entry{
		File(join("index.html")).WithContent("<html><body>report</body></html>"),
		File(join("app.js")).WithContent("console.log('report')"),
		File(join("data/suites.json")).WithContent(`{"children":[]}`),
	}
}

// ZipBytes builds an in-memory ZIP archive from entries.
func ZipBytes(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		name := e.Name
		if e.IsDir {
			name = strings.TrimSuffix(name, "/") + "/"
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: e.Modified,
		})
		if err != nil {
			t.Fatalf("failed to add zip entry %s: %v", e.Name, err)
		}
		if e.IsDir {
			continue
		}
		if _, err := w.Write([]byte(e.Content)); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize zip: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes a ZIP archive built from entries to path on afs.
func WriteZip(t *testing.T, afs afero.Fs, path string, entries ...Entry) {
	t.Helper()

	if err := afs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(afs, path, ZipBytes(t, entries...), 0644); err != nil {
		t.Fatalf("failed to write zip %s: %v", path, err)
	}
}

// WriteTree creates entries under root on afs.
func WriteTree(t *testing.T, afs afero.Fs, root string, entries ...Entry) {
	t.Helper()

	for _, e := range entries {
		path := filepath.Join(root, filepath.FromSlash(e.Name))

		if e.IsDir {
			if err := afs.MkdirAll(path, 0755); err != nil {
				t.Fatalf("failed to create directory %s: %v", e.Name, err)
			}
			continue
		}

		if err := afs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create parent directory for %s: %v", e.Name, err)
		}
		if err := afero.WriteFile(afs, path, []byte(e.Content), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", e.Name, err)
		}
	}
}

// AssertMissing fails the test if any of paths exists on the real filesystem.
func AssertMissing(t *testing.T, paths ...string) {
	t.Helper()

	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to NOT exist, but it does", p)
		}
	}
}
