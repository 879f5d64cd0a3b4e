package api

import (
	"io/fs"
	"net/http"
	"os"
	"strings"
)

// staticHandler serves the dashboard from root. Paths that do not name a
// regular file fall back to index.html; without an index the response is 404.
func staticHandler(root string) http.HandlerFunc {
	fsys := os.DirFS(root)

	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" {
			name = "index.html"
		}
		if escapesRoot(name) {
			WriteProblem(w, r, http.StatusBadRequest, "Invalid path")
			return
		}

		if !isRegularFile(fsys, name) {
			name = "index.html"
			if !isRegularFile(fsys, name) {
				WriteProblem(w, r, http.StatusNotFound, "Not found")
				return
			}
		}

		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(w, r, fsys, name)
	}
}

// escapesRoot reports whether a request path could resolve outside the
// served directory.
func escapesRoot(name string) bool {
	if strings.Contains(name, "\\") || strings.Contains(name, "\x00") {
		return true
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func isRegularFile(fsys fs.FS, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && info.Mode().IsRegular()
}
