// Package web serves the embedded single-page dashboard UI.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// Handler returns an http.Handler serving the embedded UI assets.
// The files are compiled into the binary, so no filesystem layout is
// required at runtime.
func Handler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// embed guarantees the directory exists at build time
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
