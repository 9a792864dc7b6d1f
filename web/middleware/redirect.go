package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RedirectMiddleware maps old and miscased paths onto the panel routes.
func RedirectMiddleware(basePath string) gin.HandlerFunc {
	redirects := map[string]string{
		"panel/API": "panel/api",
		"busca":     "panel",
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for from, to := range redirects {
			from, to = basePath+from, basePath+to

			if strings.HasPrefix(path, from) {
				newPath := to + path[len(from):]

				c.Redirect(http.StatusMovedPermanently, newPath)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
