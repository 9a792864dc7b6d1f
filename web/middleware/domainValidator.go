package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/ctopbusca/ctop-busca/logger"

	"github.com/gin-gonic/gin"
)

// DomainValidatorMiddleware only lets through requests whose Host is one of
// the comma separated names in domains. Ports are ignored and names compare
// case-insensitively.
func DomainValidatorMiddleware(domains string) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, d := range strings.Split(domains, ",") {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			allowed[d] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		if _, ok := allowed[strings.ToLower(host)]; !ok {
			logger.Debugf("rejected request for host %q", c.Request.Host)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Next()
	}
}
