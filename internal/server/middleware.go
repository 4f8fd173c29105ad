package server

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/BibekPathak/shark-db/internal/metrics"
	"github.com/BibekPathak/shark-db/pkg/log"
)

// RequestLogger assigns each request an id and logs method, path, status and
// latency once the handler chain finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)

		c.Next()

		log.HTTP.Info().
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Metrics records request count and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		metrics.RequestTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// isWrite reports whether a request mutates state. HEAD and GET are reads.
func isWrite(c *gin.Context) bool {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead:
		return false
	}
	return true
}

// AuthToken requires "Authorization: Bearer <token>" on write requests.
// Reads stay open, matching the original token-gated write model.
func AuthToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWrite(c) {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) || strings.TrimSpace(strings.TrimPrefix(header, prefix)) != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// ReadOnly rejects every write request with 403.
func ReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isWrite(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "server is read-only"})
			return
		}
		c.Next()
	}
}

type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func (rl *rateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[ip] = l
	}
	return l
}

// WriteRateLimit limits write requests per client IP. requestsPerMinute <= 0
// disables the limit.
func WriteRateLimit(requestsPerMinute, burst int) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	rl := &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
	}
	return func(c *gin.Context) {
		if !isWrite(c) {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			ip = c.RemoteIP()
		}
		if !rl.get(ip).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
