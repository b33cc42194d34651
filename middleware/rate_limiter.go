// middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/evspresso/walter/logging"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window per-IP limiter. State is in-process; the ops
// API runs as a single instance so nothing distributed is needed.
func RateLimiter(limit int, per time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	windows := make(map[string]*rateWindow)
	nextSweep := time.Now().Add(per)

	return func(c *gin.Context) {
		key := c.ClientIP()
		now := time.Now()

		mu.Lock()
		// Expired windows for IPs that never return would otherwise pile up
		// for the life of the process.
		if now.After(nextSweep) {
			for ip, w := range windows {
				if now.After(w.resetAt) {
					delete(windows, ip)
				}
			}
			nextSweep = now.Add(per)
		}
		window, ok := windows[key]
		if !ok || now.After(window.resetAt) {
			window = &rateWindow{resetAt: now.Add(per)}
			windows[key] = window
		}
		window.count++
		allowed := window.count <= limit
		mu.Unlock()

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
