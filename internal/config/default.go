package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prettymuchbryce/allureview/internal/pathutil"
	"github.com/spf13/afero"
)

//go:embed config-example.yaml
var defaultConfigContent string

// ErrConfigExists is returned by WriteDefaultConfig when the file is already present.
var ErrConfigExists = os.ErrExist

// WriteDefaultConfig writes the example config to configPath.
// It refuses to overwrite an existing file unless force is set.
// Returns the expanded path.
func WriteDefaultConfig(afs afero.Fs, configPath string, force bool) (string, error) {
	expanded := pathutil.ExpandTilde(configPath)

	if exists, _ := afero.Exists(afs, expanded); exists && !force {
		return expanded, fmt.Errorf("config %s: %w", expanded, ErrConfigExists)
	}

	dir := filepath.Dir(expanded)
	if err := afs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	if err := afero.WriteFile(afs, expanded, []byte(defaultConfigContent), 0644); err != nil {
		return "", fmt.Errorf("failed to create default config %s: %w", expanded, err)
	}

	slog.Info("created default config", "path", expanded)
	return expanded, nil
}

// DefaultConfigContent returns the embedded example configuration.
func DefaultConfigContent() string {
	return defaultConfigContent
}
