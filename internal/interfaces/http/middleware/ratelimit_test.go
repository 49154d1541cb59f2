package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, every time.Duration) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(limit, every)
	t.Cleanup(rl.Stop)
	return rl
}

func allow(t *testing.T, rl Limiter, key string) RateDecision {
	t.Helper()
	d, err := rl.Allow(context.Background(), key)
	require.NoError(t, err)
	return d
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter := newTestLimiter(t, 5, time.Minute)
		for i := 0; i < 5; i++ {
			d := allow(t, limiter, "client1")
			assert.True(t, d.Allowed, "request %d should be allowed", i+1)
			assert.Equal(t, 4-i, d.Remaining)
		}
	})

	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		limiter := newTestLimiter(t, 3, time.Minute)
		for i := 0; i < 3; i++ {
			assert.True(t, allow(t, limiter, "client2").Allowed)
		}
		d := allow(t, limiter, "client2")
		assert.False(t, d.Allowed)
		assert.Greater(t, d.RetryAfter, time.Duration(0))
	})

	t.Run("separate limits per client", func(t *testing.T) {
		limiter := newTestLimiter(t, 2, time.Minute)
		assert.True(t, allow(t, limiter, "clientA").Allowed)
		assert.True(t, allow(t, limiter, "clientA").Allowed)
		assert.False(t, allow(t, limiter, "clientA").Allowed)
		assert.True(t, allow(t, limiter, "clientB").Allowed)
	})

	t.Run("resets after window", func(t *testing.T) {
		limiter := newTestLimiter(t, 2, time.Minute)
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }

		assert.True(t, allow(t, limiter, "client3").Allowed)
		assert.True(t, allow(t, limiter, "client3").Allowed)
		assert.False(t, allow(t, limiter, "client3").Allowed)

		now = now.Add(time.Minute)
		assert.True(t, allow(t, limiter, "client3").Allowed)
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		limiter := newTestLimiter(t, 100, time.Minute)
		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0

		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d, _ := limiter.Allow(context.Background(), "shared")
				if d.Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 100, allowed)
	})
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (RateDecision, error) {
	return RateDecision{}, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := newTestLimiter(t, 2, time.Minute)
	router := gin.New()
	router.Use(RequestID(), RateLimit(limiter, nil))
	router.GET("/test", okHandler)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestRateLimitByKey(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)
	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	}, nil))
	router.GET("/test", okHandler)

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Client", client)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(failingLimiter{}, nil))
	router.GET("/test", okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
