// Package server serves a report directory over ephemeral local HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// ShutdownGrace bounds how long in-flight requests may finish on shutdown.
const ShutdownGrace = 5 * time.Second

var errNotStarted = errors.New("server not started")

// Options configure the listener.
type Options struct {
	Host string
	Port int // 0 lets the OS choose
}

// Server is a read-only static file server bound to one report root.
// The root is fixed for the lifetime of the Server and is not validated.
type Server struct {
	fs   afero.Fs
	root string
	opts Options

	listener net.Listener
	http     *http.Server
	port     int

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a Server for root. Nothing is bound until Start.
func New(afs afero.Fs, root string, opts Options) *Server {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	return &Server{
		fs:   afs,
		root: root,
		opts: opts,
	}
}

// Start binds the listener and returns the bound port.
func (s *Server) Start() (int, error) {
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, &StartError{Addr: addr, Err: err}
	}

	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.http = &http.Server{Handler: newFileHandler(s.fs, s.root)}

	slog.Debug("server listening", "addr", ln.Addr().String(), "root", s.root)
	return s.port, nil
}

// Serve handles requests until ctx is cancelled or Shutdown is called.
// It returns nil on a clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s.http == nil {
		return errNotStarted
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		<-errCh
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops the server. Safe to call more than once and before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	s.shutdownOnce.Do(func() {
		slog.Debug("shutting down server", "port", s.port)
		s.shutdownErr = s.http.Shutdown(ctx)
		// Serve may never have tracked the listener.
		s.listener.Close()
	})
	return s.shutdownErr
}

// Port returns the bound port, or 0 before Start.
func (s *Server) Port() int {
	return s.port
}

// Root returns the directory being served.
func (s *Server) Root() string {
	return s.root
}

// URL returns the address of the report entry point.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s/%s", net.JoinHostPort(urlHost(s.opts.Host), strconv.Itoa(s.port)), indexFile)
}

// urlHost maps wildcard bind addresses to localhost.
func urlHost(host string) string {
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		return "localhost"
	}
	return host
}
