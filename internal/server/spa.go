package server

import (
	"net/http"
	"path"
	"path/filepath"
)

// handleSPA serves the browser app from dir. Paths that are not files fall
// back to index.html so client-side routes still load.
func handleSPA(dir string) http.HandlerFunc {
	root := http.Dir(dir)
	files := http.FileServer(root)
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if f, err := root.Open(path.Clean(r.URL.Path)); err == nil {
			info, err := f.Stat()
			f.Close()
			if err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	}
}
