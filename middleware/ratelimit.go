package middleware

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/famillio/household-api/models"

	"github.com/gin-gonic/gin"
)

const defaultRequestLimit = 100

// rateLimiter is a fixed-window per-IP counter. Windows reset lazily on the
// next request after expiry; stale entries are swept by cleanupLoop.
type rateLimiter struct {
	mu       sync.Mutex
	requests map[string]*requestWindow
	limit    int
	window   time.Duration
}

type requestWindow struct {
	count   int
	resetAt time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		requests: make(map[string]*requestWindow),
		limit:    limit,
		window:   window,
	}
}

// RateLimiter limits each client IP to RATE_LIMIT requests per minute
// (default 100). Rejections use the standard error envelope and carry a
// Retry-After header.
func RateLimiter() gin.HandlerFunc {
	limit := defaultRequestLimit
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	rl := newRateLimiter(limit, time.Minute)
	go rl.cleanupLoop()
	return rl.middleware()
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if retryAfter, ok := rl.take(c.ClientIP(), time.Now()); !ok {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			apiErr := &models.APIError{
				Code:    models.ErrCodeRateLimited,
				Message: fmt.Sprintf("rate limit of %d requests per minute exceeded", rl.limit),
			}
			c.JSON(apiErr.HTTPStatus(), models.ErrorResponse{Error: apiErr})
			c.Abort()
			return
		}
		c.Next()
	}
}

// take counts one request for the client. When the window is exhausted it
// returns ok false and the time until the window resets.
func (rl *rateLimiter) take(client string, now time.Time) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.requests[client]
	if !exists || now.After(w.resetAt) {
		rl.requests[client] = &requestWindow{count: 1, resetAt: now.Add(rl.window)}
		return 0, true
	}

	if w.count >= rl.limit {
		return w.resetAt.Sub(now), false
	}

	w.count++
	return 0, true
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for client, w := range rl.requests {
			if now.After(w.resetAt) {
				delete(rl.requests, client)
			}
		}
		rl.mu.Unlock()
	}
}
