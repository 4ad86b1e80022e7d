// Package web serves the embedded browser UI so the gateway ships as
// a single binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFiles embed.FS

// Register mounts the UI: the page at "/" and its assets under
// /static. API routes must be registered separately.
func Register(r *gin.Engine) error {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}

	index, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		return err
	}

	r.StaticFS("/static", http.FS(sub))
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	return nil
}
