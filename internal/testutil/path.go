package testutil

import (
	"path/filepath"
	"runtime"
)

// Path creates a platform-independent absolute path by joining parts with the
// OS-specific separator. Use this in tests instead of hardcoded paths
// like "/reports/index.html" so tests pass on Windows.
//
// On Unix, Path("/", "reports", "run1") returns "/reports/run1"
// On Windows, Path("/", "reports", "run1") returns "C:\\reports\\run1"
//
// The first argument should be "/" to indicate an absolute path from root.
func Path(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}

	if parts[0] == "/" {
		if runtime.GOOS == "windows" {
			// C: alone is relative
			return "C:\\" + filepath.Join(parts[1:]...)
		}
		return filepath.Join(parts...)
	}

	return filepath.Join(parts...)
}
