package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/prettymuchbryce/allureview/internal/fs"
	"github.com/prettymuchbryce/allureview/internal/pathutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cleanConfigPath string
	cleanTempDir    string
	cleanDryRun     bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [pattern]",
	Short: "Remove extraction directories left behind by interrupted runs",
	Long: `Remove directories under the extraction root. Each run removes its own
extraction on exit, so anything left over comes from a killed process.

The extraction root is taken from --temp-dir, then extract.temp_dir in the
config file, then the temp directory next to the executable. The optional
pattern is a glob matched against directory names.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		SetupLogging("warn")

		root, err := cleanRoot(cmd, afero.NewOsFs())
		if err != nil {
			return err
		}

		pattern := "*"
		if len(args) > 0 {
			pattern = args[0]
		}

		var filesystem fs.FileSystem
		if cleanDryRun {
			filesystem = fs.NewDryRun()
		} else {
			filesystem = fs.NewReal()
		}

		removed, err := CleanTempRoot(filesystem, root, pattern)
		if err != nil {
			return err
		}

		if len(removed) == 0 {
			fmt.Printf("Nothing to clean in %s\n", root)
			return nil
		}

		verb := "Removed"
		if cleanDryRun {
			verb = "Would remove"
		}
		for _, dir := range removed {
			fmt.Printf("%s %s\n", verb, dir)
		}
		return nil
	},
}

func init() {
	bindCleanFlags(cleanCmd)
	rootCmd.AddCommand(cleanCmd)
}

func bindCleanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&cleanConfigPath, "config", "c", pathutil.MustDefaultConfigPath(), "path to config file")
	cmd.Flags().StringVar(&cleanTempDir, "temp-dir", "", "extraction directory (default: extract.temp_dir, else temp next to the executable)")
	cmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "n", false, "list directories without removing them")
}

// cleanRoot resolves the extraction root the same way a viewing run does,
// so leftovers are looked for where they were written.
func cleanRoot(cmd *cobra.Command, afs afero.Fs) (string, error) {
	cfg, err := readConfig(cmd, cleanConfigPath, afs)
	if err != nil {
		return "", err
	}
	if cmd.Flags().Changed("temp-dir") {
		cfg.Extract.TempDir = cleanTempDir
	}
	return tempRoot(cfg)
}

// CleanTempRoot removes the directories directly under root whose names
// match pattern and returns their paths. Files are left alone, and a
// missing root is not an error.
func CleanTempRoot(filesystem fs.FileSystem, root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	if !fs.IsDir(filesystem, root) {
		return nil, nil
	}

	entries, err := afero.ReadDir(filesystem, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ok, _ := doublestar.Match(pattern, entry.Name()); !ok {
			continue
		}

		path := filepath.Join(root, entry.Name())
		if err := filesystem.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
