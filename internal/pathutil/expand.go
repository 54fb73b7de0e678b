package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde expands a leading ~ in a path to the user's home directory.
// The path is returned unchanged when the home directory is unknown.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Expand expands environment variables and then a leading ~.
// Used for paths read from config files, e.g. "$XDG_CACHE_HOME/allureview".
func Expand(path string) string {
	return ExpandTilde(os.ExpandEnv(path))
}
