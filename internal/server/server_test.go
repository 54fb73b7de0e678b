package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prettymuchbryce/allureview/internal/fs"
	"github.com/prettymuchbryce/allureview/internal/testutil"
)

const indexContent = "<html><body>allure</body></html>"

// startServer starts a server over root and stops it when the test ends.
func startServer(t *testing.T, srv *Server) int {
	t.Helper()

	port, err := srv.Start()
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop within timeout")
		}
	})
	return port
}

// noRedirectClient reports redirects instead of following them.
var noRedirectClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := noRedirectClient.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body of %s: %v", url, err)
	}
	return resp.StatusCode, string(body)
}

func TestServe_IndexExactBytesOnLocalhost(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte(indexContent), 0644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	srv := New(fs.NewReal(), root, Options{Port: 0})
	port := startServer(t, srv)

	if port == 0 {
		t.Fatal("expected an OS-assigned port")
	}

	status, body := get(t, "http://localhost:"+strconv.Itoa(port)+"/index.html")
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if body != indexContent {
		t.Errorf("body = %q, want %q", body, indexContent)
	}
}

func TestServe_StaticSemantics(t *testing.T) {
	filesystem := fs.NewMem()
	root := testutil.Path("/", "report")
	testutil.WriteTree(t, filesystem, root,
		testutil.File("index.html").WithContent(indexContent),
		testutil.File("app.js").WithContent("console.log(1)"),
		testutil.File("data/index.html").WithContent("data index"),
		testutil.File("data/suites.json").WithContent(`{"children":[]}`),
		testutil.Dir("empty"),
	)

	srv := New(filesystem, root, Options{Host: "127.0.0.1"})
	port := startServer(t, srv)
	base := "http://127.0.0.1:" + strconv.Itoa(port)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"index", "/index.html", http.StatusOK, indexContent},
		{"root directory", "/", http.StatusOK, indexContent},
		{"asset", "/app.js", http.StatusOK, "console.log(1)"},
		{"nested file", "/data/suites.json", http.StatusOK, `{"children":[]}`},
		{"nested directory index", "/data/", http.StatusOK, "data index"},
		{"nested directory without slash", "/data", http.StatusMovedPermanently, ""},
		{"directory without index", "/empty/", http.StatusNotFound, ""},
		{"missing file", "/missing.html", http.StatusNotFound, ""},
		{"missing nested", "/data/missing/deeper.json", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, base+tt.path)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantBody != "" && body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestServe_DirectoryWithoutSlashRedirects(t *testing.T) {
	filesystem := fs.NewMem()
	root := testutil.Path("/", "report")
	testutil.WriteTree(t, filesystem, root,
		testutil.File("index.html").WithContent(indexContent),
		testutil.File("data/index.html").WithContent("data index"),
		testutil.Dir("empty"),
	)

	srv := New(filesystem, root, Options{Host: "127.0.0.1"})
	port := startServer(t, srv)
	base := "http://127.0.0.1:" + strconv.Itoa(port)

	tests := []struct {
		path     string
		location string
	}{
		{"/data", "/data/"},
		{"/data?tab=suites", "/data/?tab=suites"},
		{"/empty", "/empty/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := noRedirectClient.Get(base + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusMovedPermanently {
				t.Errorf("status = %d, want 301", resp.StatusCode)
			}
			if got := resp.Header.Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}

	// Following the redirect lands on the directory index.
	resp, err := http.Get(base + "/data")
	if err != nil {
		t.Fatalf("GET /data: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "data index" {
		t.Errorf("followed redirect = %d %q, want 200 %q", resp.StatusCode, body, "data index")
	}
}

func TestServe_ContentType(t *testing.T) {
	filesystem := fs.NewMem()
	root := testutil.Path("/", "report")
	testutil.WriteTree(t, filesystem, root,
		testutil.File("index.html").WithContent(indexContent),
		testutil.File("styles.css").WithContent("body{}"),
	)

	srv := New(filesystem, root, Options{Host: "127.0.0.1"})
	port := startServer(t, srv)

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/styles.css")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q, want text/css", ct)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	filesystem := fs.NewMem()
	root := testutil.Path("/", "report")
	testutil.WriteTree(t, filesystem, root, testutil.File("index.html").WithContent(indexContent))

	h := newFileHandler(filesystem, root)
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(method, "/index.html", nil))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", rec.Code)
			}
		})
	}
}

func TestHandler_HeadRequest(t *testing.T) {
	filesystem := fs.NewMem()
	root := testutil.Path("/", "report")
	testutil.WriteTree(t, filesystem, root, testutil.File("index.html").WithContent(indexContent))

	rec := httptest.NewRecorder()
	newFileHandler(filesystem, root).ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/index.html", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body for HEAD, got %d bytes", rec.Body.Len())
	}
}

func TestHandler_TraversalStaysInRoot(t *testing.T) {
	filesystem := fs.NewMemTest()
	root := testutil.Path("/", "srv", "report")
	filesystem.MustWriteFile(testutil.Path(root, "index.html"), indexContent)
	filesystem.MustWriteFile(testutil.Path("/", "srv", "secret.txt"), "secret")

	h := newFileHandler(filesystem, root)

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	req.URL.Path = "/../secret.txt"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Error("response leaked a file outside the root")
	}
}

func TestStart_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	srv := New(fs.NewMem(), testutil.Path("/", "report"), Options{Host: "127.0.0.1", Port: port})
	_, err = srv.Start()

	var startErr *StartError
	if !errors.As(err, &startErr) {
		t.Fatalf("expected StartError, got %v", err)
	}
	if !strings.Contains(startErr.Addr, strconv.Itoa(port)) {
		t.Errorf("error addr = %q, want port %d", startErr.Addr, port)
	}
}

func TestServe_FixedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	filesystem := fs.NewMem()
	root := testutil.Path("/", "report")
	testutil.WriteTree(t, filesystem, root, testutil.File("index.html").WithContent(indexContent))

	srv := New(filesystem, root, Options{Host: "127.0.0.1", Port: port})
	if srv.Port() != 0 {
		t.Errorf("Port() before Start = %d, want 0", srv.Port())
	}
	if got := startServer(t, srv); got != port {
		t.Errorf("bound port = %d, want %d", got, port)
	}
	if srv.Port() != port {
		t.Errorf("Port() = %d, want %d", srv.Port(), port)
	}
	if srv.Root() != root {
		t.Errorf("Root() = %q, want %q", srv.Root(), root)
	}
}

func TestServe_ShutdownUnblocks(t *testing.T) {
	srv := New(fs.NewMem(), testutil.Path("/", "report"), Options{Host: "127.0.0.1"})
	if _, err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("second shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error after shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestServe_ContextCancelUnblocks(t *testing.T) {
	srv := New(fs.NewMem(), testutil.Path("/", "report"), Options{Host: "127.0.0.1"})
	if _, err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancel")
	}
}

func TestServe_BeforeStart(t *testing.T) {
	srv := New(fs.NewNoop(), testutil.Path("/", "report"), Options{})

	if err := srv.Serve(context.Background()); err == nil {
		t.Error("expected error when serving before Start")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("expected nil from Shutdown before Start, got %v", err)
	}
}

func TestStart_DoesNotTouchFilesystem(t *testing.T) {
	noop := fs.NewNoop()
	srv := New(noop, testutil.Path("/", "report"), Options{Host: "127.0.0.1"})
	if _, err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
	if calls := noop.Calls(); len(calls) != 0 {
		t.Errorf("binding should not read the root, got %v", calls)
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"localhost", "http://localhost:8123/index.html"},
		{"", "http://localhost:8123/index.html"},
		{"0.0.0.0", "http://localhost:8123/index.html"},
		{"127.0.0.1", "http://127.0.0.1:8123/index.html"},
		{"::1", "http://[::1]:8123/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			srv := New(fs.NewNoop(), testutil.Path("/", "report"), Options{Host: tt.host})
			srv.port = 8123
			if got := srv.URL(); got != tt.expected {
				t.Errorf("URL() = %q, want %q", got, tt.expected)
			}
		})
	}
}
