package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prettymuchbryce/allureview/internal/testutil"
)

func TestMemAbs(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "absolute path cleaned",
			path:     testutil.Path("/", "reports", "..", "reports", "run1"),
			expected: testutil.Path("/", "reports", "run1"),
		},
		{
			name:     "relative path rooted",
			path:     filepath.Join("reports", "run1"),
			expected: filepath.Join(string(filepath.Separator), "reports", "run1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMem().Abs(tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Abs(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestRealAbs_RelativeResolvesAgainstWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	got, err := NewReal().Abs("report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(wd, "report"); got != want {
		t.Errorf("Abs = %q, want %q", got, want)
	}
}

func TestIsDirAndIsFile(t *testing.T) {
	filesystem := NewMemTest()
	dir := testutil.Path("/", "report")
	file := testutil.Path("/", "report", "index.html")
	filesystem.MustMkdirAll(dir)
	filesystem.MustWriteFile(file, "<html></html>")

	if !IsDir(filesystem, dir) {
		t.Error("expected IsDir to be true for directory")
	}
	if IsDir(filesystem, file) {
		t.Error("expected IsDir to be false for file")
	}
	if !IsFile(filesystem, file) {
		t.Error("expected IsFile to be true for file")
	}
	if IsFile(filesystem, dir) {
		t.Error("expected IsFile to be false for directory")
	}
	if IsDir(filesystem, testutil.Path("/", "missing")) || IsFile(filesystem, testutil.Path("/", "missing")) {
		t.Error("expected missing path to be neither file nor directory")
	}
}

func TestDryRun_RemoveAllKeepsFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "extracted")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := NewDryRun().RemoveAll(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected %s to survive dry-run removal: %v", dir, err)
	}
}

func TestReal_RemoveAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "extracted")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := NewReal().RemoveAll(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed", dir)
	}
}

func TestNoop_DeniesAndRecords(t *testing.T) {
	noop := NewNoop()

	if _, err := noop.Stat("/report/index.html"); !errors.Is(err, ErrUnexpectedAccess) {
		t.Errorf("Stat error = %v, want ErrUnexpectedAccess", err)
	}
	if err := noop.RemoveAll("/report"); !errors.Is(err, ErrUnexpectedAccess) {
		t.Errorf("RemoveAll error = %v, want ErrUnexpectedAccess", err)
	}
	if IsFile(noop, "/report/index.html") {
		t.Error("IsFile should be false on a denied stat")
	}

	calls := noop.Calls()
	want := []string{"stat /report/index.html", "remove /report", "stat /report/index.html"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}
