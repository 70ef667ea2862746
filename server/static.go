package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// spaHandler serves files from dir, falling back to index.html so a
// client-side router can handle unknown paths. Paths under api/ never fall
// back.
func spaHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		clean := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if clean == "api" || strings.HasPrefix(clean, "api/") {
			writeError(r.Context(), w, newAPIError(CodeNotFound, "no route for "+r.URL.Path, http.StatusNotFound))
			return
		}

		if clean != "" {
			if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		if _, err := os.Stat(index); err != nil {
			writeError(r.Context(), w, newAPIError(CodeNotFound, "no route for "+r.URL.Path, http.StatusNotFound))
			return
		}
		http.ServeFile(w, r, index)
	}
}
