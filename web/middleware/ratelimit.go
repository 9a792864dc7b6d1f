package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ctopbusca/ctop-busca/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the login throttle.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	KeyFunc           func(c *gin.Context) string
	// Paths lists the path suffixes that are limited. Other requests pass.
	Paths []string
	// IdleTTL drops the limiter of a key that has not been seen for that long.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig limits login attempts per client address.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		BurstSize:         5,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		Paths:   []string{"/login"},
		IdleTTL: 10 * time.Minute,
	}
}

func (config RateLimitConfig) applies(c *gin.Context) bool {
	if c.Request.Method != http.MethodPost {
		return false
	}
	for _, p := range config.Paths {
		if strings.HasSuffix(c.Request.URL.Path, p) {
			return true
		}
	}
	return false
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	config RateLimitConfig

	mu       sync.Mutex
	visitors map[string]*visitor
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.config.IdleTTL {
			delete(s.visitors, k)
		}
	}
	v, ok := s.visitors[key]
	if !ok {
		every := time.Minute / time.Duration(s.config.RequestsPerMinute)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), s.config.BurstSize)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimitMiddleware rejects POSTs to the configured paths with 429 once a
// client exceeds its budget. State is kept in memory per process.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 1
	}
	if config.BurstSize <= 0 {
		config.BurstSize = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	set := &limiterSet{config: config, visitors: make(map[string]*visitor)}

	return func(c *gin.Context) {
		if !config.applies(c) {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		if !set.get(key, time.Now()).Allow() {
			logger.Warningf("Rate limit exceeded for %s on %s", key, c.Request.URL.Path)
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     "Too many attempts. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
