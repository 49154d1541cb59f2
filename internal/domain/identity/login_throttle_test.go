package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newMemoryAttemptStore() *memoryAttemptStore {
	return &memoryAttemptStore{attempts: make(map[string][]time.Time)}
}

func (s *memoryAttemptStore) RecordFailure(_ context.Context, key string, at time.Time, window time.Duration) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[key] = PruneAttempts(append(s.attempts[key], at), at, window)
	return append([]time.Time(nil), s.attempts[key]...), nil
}

func (s *memoryAttemptStore) Attempts(_ context.Context, key string, now time.Time, window time.Duration) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[key] = PruneAttempts(s.attempts[key], now, window)
	return append([]time.Time(nil), s.attempts[key]...), nil
}

func (s *memoryAttemptStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestThrottle(maxAttempts int) (*LoginThrottle, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	throttle := NewLoginThrottle(newMemoryAttemptStore(), ThrottlePolicy{
		MaxAttempts: maxAttempts,
		Window:      15 * time.Minute,
	}).WithClock(clock.Now)
	return throttle, clock
}

func TestLoginThrottle_BlocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	throttle, clock := newTestThrottle(3)
	key := ThrottleKey("Jane@Example.com")

	for i := 1; i <= 2; i++ {
		st, err := throttle.RecordFailure(ctx, key)
		require.NoError(t, err)
		assert.False(t, st.Blocked)
		assert.Equal(t, 3-i, st.RemainingAttempts)
		clock.Advance(time.Minute)
	}

	st, err := throttle.RecordFailure(ctx, key)
	require.NoError(t, err)
	assert.True(t, st.Blocked)
	assert.Equal(t, 0, st.RemainingAttempts)
	// first failure at 12:00 leaves the window at 12:15; now is 12:02
	assert.Equal(t, 13*time.Minute, st.RetryAfter)

	check, err := throttle.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, check.Blocked)
}

func TestLoginThrottle_WindowSlides(t *testing.T) {
	ctx := context.Background()
	throttle, clock := newTestThrottle(3)
	key := ThrottleKey("jane@example.com")

	for i := 0; i < 3; i++ {
		_, err := throttle.RecordFailure(ctx, key)
		require.NoError(t, err)
		clock.Advance(5 * time.Minute)
	}
	// attempts at 12:00, 12:05, 12:10; now 12:15 so the first has expired
	st, err := throttle.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, st.Blocked)
	assert.Equal(t, 2, st.Attempts)
	assert.Equal(t, 1, st.RemainingAttempts)
}

func TestLoginThrottle_ResetClearsCounter(t *testing.T) {
	ctx := context.Background()
	throttle, _ := newTestThrottle(2)
	key := ThrottleKey("jane@example.com")

	_, err := throttle.RecordFailure(ctx, key)
	require.NoError(t, err)
	_, err = throttle.RecordFailure(ctx, key)
	require.NoError(t, err)

	require.NoError(t, throttle.Reset(ctx, key))

	st, err := throttle.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, st.Blocked)
	assert.Equal(t, 0, st.Attempts)
	assert.Equal(t, 2, st.RemainingAttempts)
}

func TestLoginThrottle_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	throttle, _ := newTestThrottle(1)

	st, err := throttle.RecordFailure(ctx, ThrottleKey("a@example.com"))
	require.NoError(t, err)
	assert.True(t, st.Blocked)

	other, err := throttle.Check(ctx, ThrottleKey("b@example.com"))
	require.NoError(t, err)
	assert.False(t, other.Blocked)
}

func TestNewLoginThrottle_Defaults(t *testing.T) {
	throttle := NewLoginThrottle(newMemoryAttemptStore(), ThrottlePolicy{})
	assert.Equal(t, 5, throttle.Policy().MaxAttempts)
	assert.Equal(t, 15*time.Minute, throttle.Policy().Window)
}

func TestPruneAttempts(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := []time.Time{
		now.Add(-20 * time.Minute),
		now.Add(-15 * time.Minute),
		now.Add(-14 * time.Minute),
		now,
	}
	kept := PruneAttempts(attempts, now, 15*time.Minute)
	assert.Equal(t, []time.Time{now.Add(-14 * time.Minute), now}, kept)
}

func TestThrottleKey(t *testing.T) {
	assert.Equal(t, "login:jane@example.com", ThrottleKey("  Jane@Example.COM "))
}
