package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedEngine(config RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RateLimitMiddleware(config))
	engine.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func serve(engine *gin.Engine, method, remote string) int {
	req := httptest.NewRequest(method, "/login", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	config := DefaultRateLimitConfig()
	config.RequestsPerMinute = 1
	config.BurstSize = 2
	engine := newLimitedEngine(config)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "10.0.0.1:1000"))

	// other clients and other methods are unaffected
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "10.0.0.2:1000"))
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "10.0.0.1:1000"))
}
