// Package viewer runs one report viewing session: resolve the input, serve
// it, present the URL, and remove temporary files on the way out.
package viewer

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/pkg/browser"
	"github.com/prettymuchbryce/allureview/internal/cleanup"
	"github.com/prettymuchbryce/allureview/internal/fs"
	"github.com/prettymuchbryce/allureview/internal/report"
	"github.com/prettymuchbryce/allureview/internal/resolver"
	"github.com/prettymuchbryce/allureview/internal/server"
	"github.com/prettymuchbryce/allureview/internal/watcher"
)

// DefaultWatchDebounce is the quiet period before a batch of changes is reported.
const DefaultWatchDebounce = 500 * time.Millisecond

func init() {
	// Browser launchers print to the terminal we are logging to.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Opener presents a URL to the user.
type Opener func(url string) error

// OpenBrowser opens url in the default browser.
func OpenBrowser(url string) error {
	return browser.OpenURL(url)
}

// Options configure a Viewer.
type Options struct {
	Resolver resolver.Options
	Server   server.Options

	OpenBrowser   bool
	Watch         bool
	WatchDebounce time.Duration

	// Opener defaults to OpenBrowser.
	Opener Opener

	// Summary prints the report summary once serving starts. Nil disables it.
	Summary *report.Printer

	// Notify sends service manager state. Defaults to sd_notify.
	Notify func(state string)
}

// Viewer owns the lifecycle of a single viewing session.
type Viewer struct {
	fs   fs.FileSystem
	opts Options
}

// New creates a Viewer.
func New(filesystem fs.FileSystem, opts Options) *Viewer {
	if opts.Opener == nil {
		opts.Opener = OpenBrowser
	}
	if opts.Notify == nil {
		opts.Notify = sdNotify
	}
	if opts.WatchDebounce <= 0 {
		opts.WatchDebounce = DefaultWatchDebounce
	}
	return &Viewer{fs: filesystem, opts: opts}
}

// Run resolves input and serves it until ctx is cancelled.
// Every temporary path created along the way is removed before Run
// returns, on success and on error alike.
func (v *Viewer) Run(ctx context.Context, input string) error {
	registry := cleanup.NewRegistry(v.fs)
	defer drain(registry)

	res, err := resolver.New(v.fs, registry, v.opts.Resolver).Resolve(input)
	if err != nil {
		return err
	}

	srv := server.New(v.fs, res.Dir, v.opts.Server)
	if _, err := srv.Start(); err != nil {
		return err
	}
	defer shutdown(srv)

	url := srv.URL()
	slog.Info("serving report", "url", url, "port", srv.Port(), "root", srv.Root())

	if v.opts.Summary != nil {
		v.opts.Summary.Print(report.Collect(v.fs, res, url))
	}

	if v.opts.OpenBrowser {
		if err := v.opts.Opener(url); err != nil {
			slog.Warn("failed to open browser, open the URL manually", "url", url, "error", err)
		}
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchDone := v.startWatcher(serveCtx, res.Dir)

	v.opts.Notify(daemon.SdNotifyReady)
	slog.Info("press Ctrl+C to stop")

	err = srv.Serve(serveCtx)

	v.opts.Notify(daemon.SdNotifyStopping)
	cancel()
	<-watchDone

	return err
}

// startWatcher watches dir when enabled. The returned channel is closed
// once the watcher has stopped, or immediately when it never started.
func (v *Viewer) startWatcher(ctx context.Context, dir string) <-chan struct{} {
	done := make(chan struct{})
	if !v.opts.Watch {
		close(done)
		return done
	}

	w, err := watcher.New(dir, resolver.IndexFile, v.opts.WatchDebounce, nil)
	if err != nil {
		slog.Warn("failed to watch report directory", "path", dir, "error", err)
		close(done)
		return done
	}

	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			slog.Error("watcher error", "error", err)
		}
	}()
	return done
}

func shutdown(srv *server.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), server.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Debug("server shutdown", "error", err)
	}
}

func drain(registry *cleanup.Registry) {
	if n := registry.Drain(); n > 0 {
		slog.Debug("removed temporary files", "paths", n)
	}
}

// sdNotify is a no-op outside systemd.
func sdNotify(state string) {
	daemon.SdNotify(false, state)
}
