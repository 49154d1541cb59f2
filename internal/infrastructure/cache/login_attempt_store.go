package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/redis/go-redis/v9"
)

const loginAttemptPrefix = "jewelry:throttle:"

// RedisLoginAttemptStore keeps failed login timestamps in a sorted set per
// key, scored by unix milliseconds
type RedisLoginAttemptStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLoginAttemptStore creates a store on an existing Redis client
func NewRedisLoginAttemptStore(client *redis.Client) *RedisLoginAttemptStore {
	return &RedisLoginAttemptStore{client: client, keyPrefix: loginAttemptPrefix}
}

func (s *RedisLoginAttemptStore) key(key string) string {
	return s.keyPrefix + key
}

// RecordFailure adds the attempt, prunes the window and refreshes the key TTL
// in one transaction
func (s *RedisLoginAttemptStore) RecordFailure(ctx context.Context, key string, at time.Time, window time.Duration) ([]time.Time, error) {
	k := s.key(key)
	cutoff := at.Add(-window).UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", strconv.FormatInt(cutoff, 10))
	// Members must be unique; two failures in the same millisecond are both kept
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(at.UnixMilli()), Member: uuid.NewString()})
	pipe.PExpire(ctx, k, window)
	scores := pipe.ZRangeWithScores(ctx, k, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record login failure: %w", err)
	}
	return toAttempts(scores.Val()), nil
}

// Attempts returns the attempts with a score inside the window
func (s *RedisLoginAttemptStore) Attempts(ctx context.Context, key string, now time.Time, window time.Duration) ([]time.Time, error) {
	cutoff := now.Add(-window).UnixMilli()
	zs, err := s.client.ZRangeByScoreWithScores(ctx, s.key(key), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read login attempts: %w", err)
	}
	return toAttempts(zs), nil
}

// Clear deletes the key
func (s *RedisLoginAttemptStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}

func toAttempts(zs []redis.Z) []time.Time {
	attempts := make([]time.Time, 0, len(zs))
	for _, z := range zs {
		attempts = append(attempts, time.UnixMilli(int64(z.Score)))
	}
	return attempts
}

var _ identity.LoginAttemptStore = (*RedisLoginAttemptStore)(nil)

// InMemoryLoginAttemptStore keeps attempts in process memory
type InMemoryLoginAttemptStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewInMemoryLoginAttemptStore creates an empty store
func NewInMemoryLoginAttemptStore() *InMemoryLoginAttemptStore {
	return &InMemoryLoginAttemptStore{attempts: make(map[string][]time.Time)}
}

// RecordFailure appends the attempt and prunes the window
func (s *InMemoryLoginAttemptStore) RecordFailure(_ context.Context, key string, at time.Time, window time.Duration) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := identity.PruneAttempts(s.attempts[key], at, window)
	kept = append(kept, at)
	s.attempts[key] = kept
	return append([]time.Time(nil), kept...), nil
}

// Attempts prunes and returns a copy of the attempts inside the window
func (s *InMemoryLoginAttemptStore) Attempts(_ context.Context, key string, now time.Time, window time.Duration) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := identity.PruneAttempts(s.attempts[key], now, window)
	if len(kept) == 0 {
		delete(s.attempts, key)
		return []time.Time{}, nil
	}
	s.attempts[key] = kept
	return append([]time.Time(nil), kept...), nil
}

// Clear forgets the key
func (s *InMemoryLoginAttemptStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}

var _ identity.LoginAttemptStore = (*InMemoryLoginAttemptStore)(nil)
