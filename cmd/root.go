package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/prettymuchbryce/allureview/internal/config"
	"github.com/prettymuchbryce/allureview/internal/fs"
	"github.com/prettymuchbryce/allureview/internal/pathutil"
	"github.com/prettymuchbryce/allureview/internal/picker"
	"github.com/prettymuchbryce/allureview/internal/report"
	"github.com/prettymuchbryce/allureview/internal/resolver"
	"github.com/prettymuchbryce/allureview/internal/server"
	"github.com/prettymuchbryce/allureview/internal/viewer"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootPort       int
	rootHost       string
	rootNoBrowser  bool
	rootWatch      bool
	rootLogLevel   string
	rootTempDir    string
)

// mode is decided once per invocation and selects how errors are shown.
var mode = ModeCLI

var rootCmd = &cobra.Command{
	Use:   "allureview [path]",
	Short: "allureview - Serve an Allure report directory or ZIP archive and open it in the browser",
	Long: `Serve a pre-generated Allure report over a temporary local HTTP server.

The path may be a report directory containing index.html, or a .zip
archive of one. Archives are extracted next to the executable and removed
again on exit. Without a path, an interactive picker asks for one.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, afero.NewOsFs())
		if err != nil {
			return err
		}
		SetupLogging(cfg.Logging.Level)

		mode, err = SelectMode(args, stdinIsTerminal())
		if err != nil {
			return err
		}

		ctx, stop := interruptContext(cmd.Context())
		defer stop()

		input, err := chooseInput(ctx, args, picker.NewForm(afero.NewOsFs()))
		if err != nil {
			return err
		}

		opts, err := viewerOptions(cfg)
		if err != nil {
			return err
		}

		return viewer.New(fs.NewReal(), opts).Run(ctx, input)
	},
}

func init() {
	bindRootFlags(rootCmd)
}

func bindRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rootConfigPath, "config", "c", pathutil.MustDefaultConfigPath(), "path to config file")
	cmd.Flags().IntVarP(&rootPort, "port", "p", 0, "port to listen on (0 picks a free port)")
	cmd.Flags().StringVar(&rootHost, "host", "localhost", "host to bind")
	cmd.Flags().BoolVar(&rootNoBrowser, "no-browser", false, "do not open the report in a browser")
	cmd.Flags().BoolVarP(&rootWatch, "watch", "w", false, "log changes to the served report")
	cmd.Flags().StringVarP(&rootLogLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&rootTempDir, "temp-dir", "", "extraction directory (default: temp next to the executable)")
}

// loadConfig reads the config file and applies flags the user set.
// The default config file is optional; an explicit --config must exist.
func loadConfig(cmd *cobra.Command, afs afero.Fs) (*config.Config, error) {
	cfg, err := readConfig(cmd, rootConfigPath, afs)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = rootPort
	}
	if flags.Changed("host") {
		cfg.Server.Host = rootHost
	}
	if flags.Changed("no-browser") {
		cfg.Server.OpenBrowser = !rootNoBrowser
	}
	if flags.Changed("watch") {
		cfg.Server.Watch = rootWatch
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = rootLogLevel
	}
	if flags.Changed("temp-dir") {
		cfg.Extract.TempDir = rootTempDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readConfig loads path, which must exist only when --config was given.
func readConfig(cmd *cobra.Command, path string, afs afero.Fs) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cmd.Flags().Changed("config") {
		cfg, err = config.LoadWithFs(path, afs)
	} else {
		cfg, err = config.LoadOptional(path, afs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// tempRoot returns the configured extraction root or the default one.
func tempRoot(cfg *config.Config) (string, error) {
	if cfg.Extract.TempDir != "" {
		return pathutil.Expand(cfg.Extract.TempDir), nil
	}
	return pathutil.DefaultTempRoot()
}

func viewerOptions(cfg *config.Config) (viewer.Options, error) {
	root, err := tempRoot(cfg)
	if err != nil {
		return viewer.Options{}, err
	}

	opts := viewer.Options{
		Resolver: resolver.Options{
			TempRoot: root,
			Ignore:   cfg.Extract.Ignore,
		},
		Server: server.Options{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
		},
		OpenBrowser: cfg.Server.OpenBrowser,
		Watch:       cfg.Server.Watch,
	}
	if cfg.Summary.Enabled {
		opts.Summary = report.NewPrinter(cfg.Summary.TimeFormat)
	}
	return opts, nil
}

// chooseInput returns the path argument, or asks p when there is none.
func chooseInput(ctx context.Context, args []string, p picker.Picker) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return p.Pick(ctx)
}

// interruptContext is cancelled by the first SIGINT or SIGTERM. Signal
// handling is released at that point, so a second interrupt during shutdown
// terminates the process.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func SetVersion(v string) {
	rootCmd.Version = v
}

func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if errors.Is(err, picker.ErrNoSelection) {
		slog.Warn("no report selected, exiting")
		return
	}

	PrintError(os.Stderr, mode, err)
	os.Exit(1)
}
