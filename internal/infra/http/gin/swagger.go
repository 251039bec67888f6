package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

//go:embed swagger/openapi.json
var openapiDoc []byte

//go:embed swagger/index.html
var swaggerPage string

const specPath = "/swagger/doc.json"

// registerSwaggerRoutes serves the embedded API reference. The HTML template
// is rendered once; only the spec URL placeholder is substituted.
func registerSwaggerRoutes(router gin.IRoutes) {
	page := []byte(strings.ReplaceAll(swaggerPage, "{{SPEC_URL}}", specPath))
	router.GET(specPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openapiDoc)
	})
	router.GET("/swagger", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}
