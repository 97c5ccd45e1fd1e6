package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"cardparse/internal/middleware"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := middleware.NewRateLimiter(3)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("client")
		assert.True(t, allowed, "request %d", i+1)
	}
	allowed, remaining := rl.Allow("client")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRateLimiter_PerKeyIsolation(t *testing.T) {
	rl := middleware.NewRateLimiter(1)

	allowed, _ := rl.Allow("a")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("a")
	assert.False(t, allowed)

	allowed, _ = rl.Allow("b")
	assert.True(t, allowed)
}

func TestRateLimiter_RemainingCountsDown(t *testing.T) {
	rl := middleware.NewRateLimiter(3)

	_, remaining := rl.Allow("client")
	assert.Equal(t, 2, remaining)
	_, remaining = rl.Allow("client")
	assert.Equal(t, 1, remaining)
	_, remaining = rl.Allow("client")
	assert.Equal(t, 0, remaining)
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := middleware.NewRateLimiter(50)

	var wg sync.WaitGroup
	allowedCount := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			allowed, _ := rl.Allow(fmt.Sprintf("key-%d", n%2))
			allowedCount <- allowed
		}(i)
	}
	wg.Wait()
	close(allowedCount)

	total := 0
	for allowed := range allowedCount {
		if allowed {
			total++
		}
	}
	// two keys, 50 each
	assert.Equal(t, 100, total)
}

func TestRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(2)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}
