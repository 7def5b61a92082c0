package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// FS returns an http.FileSystem for the embedded frontend.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Should never happen for a fixed embed path. Expose the raw FS
		// on error.
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
