package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"
)

const indexFile = "index.html"

// fileHandler serves files read-only from an afero filesystem rooted at the
// report directory. Directories resolve to their index.html; anything else
// missing is a 404.
type fileHandler struct {
	root http.FileSystem
}

func newFileHandler(afs afero.Fs, root string) *fileHandler {
	return &fileHandler{root: afero.NewHttpFs(afs).Dir(root)}
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.serve(rec, r)
	slog.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
}

func (h *fileHandler) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Path
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	name = path.Clean(name)

	f, err := h.root.Open(name)
	if err != nil {
		writeOpenError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeOpenError(w, err)
		return
	}

	if info.IsDir() {
		// Relative links in the index resolve against the slash form.
		if !strings.HasSuffix(r.URL.Path, "/") {
			redirectToDir(w, r, name)
			return
		}

		name = path.Join(name, indexFile)
		f, err = h.root.Open(name)
		if err != nil {
			writeOpenError(w, err)
			return
		}
		defer f.Close()

		info, err = f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func redirectToDir(w http.ResponseWriter, r *http.Request, name string) {
	target := name + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusMovedPermanently)
}

func writeOpenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
