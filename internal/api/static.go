package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// indexCandidates are the UI entry points looked up in order under the
// static directory.
var indexCandidates = []string{"index.html", "studio.html"}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	for _, name := range indexCandidates {
		path := filepath.Join(s.staticDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintln(w, "no UI found: place index.html or studio.html in the static directory, or point PRISM_STATIC_DIR at it")
}
