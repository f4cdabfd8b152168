package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/famillio/household-api/models"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter(rl *rateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func pingFrom(router *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	t.Run("rejects past the limit with the error envelope", func(t *testing.T) {
		router := rateLimitedRouter(newRateLimiter(2, time.Minute))

		for i := 0; i < 2; i++ {
			if w := pingFrom(router, "10.0.0.1:1234"); w.Code != http.StatusOK {
				t.Fatalf("request %d = %d, want 200", i+1, w.Code)
			}
		}

		w := pingFrom(router, "10.0.0.1:1234")
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("request past limit = %d, want 429", w.Code)
		}
		if w.Header().Get("Retry-After") == "" {
			t.Error("429 response missing Retry-After header")
		}

		var resp models.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if resp.Error == nil || resp.Error.Code != models.ErrCodeRateLimited {
			t.Errorf("error code = %v, want %s", resp.Error, models.ErrCodeRateLimited)
		}
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		router := rateLimitedRouter(newRateLimiter(1, time.Minute))

		if w := pingFrom(router, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("first client = %d, want 200", w.Code)
		}
		if w := pingFrom(router, "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
			t.Fatalf("first client past limit = %d, want 429", w.Code)
		}
		if w := pingFrom(router, "10.0.0.2:1234"); w.Code != http.StatusOK {
			t.Errorf("second client = %d, want 200", w.Code)
		}
	})

	t.Run("window resets", func(t *testing.T) {
		rl := newRateLimiter(1, time.Minute)
		now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

		if _, ok := rl.take("c1", now); !ok {
			t.Fatal("first request denied")
		}
		if _, ok := rl.take("c1", now.Add(time.Second)); ok {
			t.Fatal("second request within window allowed")
		}
		if _, ok := rl.take("c1", now.Add(time.Minute+time.Second)); !ok {
			t.Error("request after window expiry denied")
		}
	})
}
