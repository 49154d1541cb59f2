package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateDecision is the outcome of one rate limit check
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows
type Limiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}

// RateLimiter is the in-memory fixed-window limiter used by single instances
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a new rate limiter. Call Stop to end its janitor.
func NewRateLimiter(limit int, every time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*bucket),
		limit:   limit,
		window:  every,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes expired windows every two windows
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.clients {
				if now.After(w.resetAt) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Allow counts a request for key
func (rl *RateLimiter) Allow(_ context.Context, key string) (RateDecision, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || !now.Before(w.resetAt) {
		w = &bucket{resetAt: now.Add(rl.window)}
		rl.clients[key] = w
	}

	if w.count >= rl.limit {
		return RateDecision{Limit: rl.limit, RetryAfter: w.resetAt.Sub(now)}, nil
	}
	w.count++
	return RateDecision{Allowed: true, Limit: rl.limit, Remaining: rl.limit - w.count}, nil
}

// RedisRateLimiter shares the fixed windows between API instances
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a Redis-backed limiter. The prefix separates
// limiters that share one Redis database.
func NewRedisRateLimiter(client *redis.Client, prefix string, limit int, every time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: "jewelry:ratelimit:" + prefix + ":",
		limit:  limit,
		window: every,
	}
}

// Allow increments the key's counter and starts its window on the first hit
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	k := rl.prefix + key

	count, err := rl.client.Incr(ctx, k).Result()
	if err != nil {
		return RateDecision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := rl.client.PExpire(ctx, k, rl.window).Err(); err != nil {
			return RateDecision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	ttl, err := rl.client.PTTL(ctx, k).Result()
	if err != nil {
		return RateDecision{}, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// counter lost its expiry; start a fresh window
		rl.client.PExpire(ctx, k, rl.window)
		ttl = rl.window
	}

	if int(count) > rl.limit {
		return RateDecision{Limit: rl.limit, RetryAfter: ttl}, nil
	}
	return RateDecision{Allowed: true, Limit: rl.limit, Remaining: rl.limit - int(count)}, nil
}

// ClientIPKey keys limits by client address
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit returns a rate limiting middleware keyed by client IP
func RateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(limiter, ClientIPKey, log)
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor.
// A limiter error lets the request through.
func RateLimitByKey(limiter Limiter, keyFunc func(*gin.Context) string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retry := int(decision.RetryAfter.Round(time.Second).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				c.GetString(RequestIDKey),
			))
			return
		}

		c.Next()
	}
}
