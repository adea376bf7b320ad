package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var assets embed.FS

// Register serves the dashboard at / and its assets under /static.
func Register(router *gin.Engine) {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	files := http.FS(sub)
	router.StaticFS("/static", files)
	router.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", files)
	})
}
