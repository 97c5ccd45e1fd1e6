package middleware

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a thread-safe sliding-window limiter. Each key is allowed
// up to limit requests per minute. State is in-memory; multi-instance
// deployments need a shared store instead.
type RateLimiter struct {
	limit int

	mu       sync.Mutex
	requests map[string][]time.Time
}

func NewRateLimiter(limit int) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	return &RateLimiter{
		limit:    limit,
		requests: make(map[string][]time.Time),
	}
}

// Allow records a request for the key and reports whether it is within the
// limit, along with the remaining quota for this window.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	now := time.Now()
	cutoff := now.Add(-time.Minute)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	kept := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	rl.requests[key] = kept

	if len(kept) >= rl.limit {
		return false, 0
	}

	rl.requests[key] = append(kept, now)
	return true, rl.limit - len(rl.requests[key])
}

// RateLimit returns middleware enforcing the per-key limit. Keys are the
// API key fingerprints set by APIKeyAuth, falling back to client IP for
// unauthenticated routes.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextKeyAPIKeyHash)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, remaining := rl.Allow(key)
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			log.Printf("ratelimit: limit exceeded for %s (%s)", key, c.ClientIP())
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": fmt.Sprintf("rate limit exceeded: max %d requests per minute, retry after 60 seconds", rl.limit),
				},
			})
			return
		}
		c.Next()
	}
}
