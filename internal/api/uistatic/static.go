// Package uistatic embeds the single-page upload form served at "/".
package uistatic

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed app
var assets embed.FS

// Handler serves index.html at "/" and any other embedded asset by name.
// Unknown paths are 404s.
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "app")
	if err != nil {
		return http.NotFoundHandler()
	}
	files := http.FileServerFS(sub)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFileFS(w, r, sub, "index.html")
			return
		}
		if _, err := fs.Stat(sub, name); err != nil {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
