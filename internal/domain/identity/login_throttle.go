package identity

import (
	"context"
	"strings"
	"time"
)

// LoginAttemptStore keeps timestamps of failed login attempts per key.
// Implementations drop attempts older than the window on every call.
type LoginAttemptStore interface {
	// RecordFailure stores a failure at `at` and returns the attempts still
	// inside the window ending at `at`, oldest first.
	RecordFailure(ctx context.Context, key string, at time.Time, window time.Duration) ([]time.Time, error)

	// Attempts returns the failures inside the window ending at `now`, oldest first.
	Attempts(ctx context.Context, key string, now time.Time, window time.Duration) ([]time.Time, error)

	// Clear forgets every attempt recorded for the key.
	Clear(ctx context.Context, key string) error
}

// ThrottlePolicy bounds failed logins per key inside a sliding window
type ThrottlePolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultThrottlePolicy allows 5 failures per 15 minutes
func DefaultThrottlePolicy() ThrottlePolicy {
	return ThrottlePolicy{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
	}
}

// ThrottleStatus describes a key's standing after a check or a failure
type ThrottleStatus struct {
	Attempts          int
	RemainingAttempts int
	Blocked           bool
	RetryAfter        time.Duration
}

// LoginThrottle rejects login attempts for a key once MaxAttempts failures
// fall inside the window. A successful login resets the key.
type LoginThrottle struct {
	store  LoginAttemptStore
	policy ThrottlePolicy
	now    func() time.Time
}

// NewLoginThrottle creates a throttle over the given store
func NewLoginThrottle(store LoginAttemptStore, policy ThrottlePolicy) *LoginThrottle {
	defaults := DefaultThrottlePolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.Window <= 0 {
		policy.Window = defaults.Window
	}
	return &LoginThrottle{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// WithClock replaces the time source
func (t *LoginThrottle) WithClock(now func() time.Time) *LoginThrottle {
	t.now = now
	return t
}

// Policy returns the active policy
func (t *LoginThrottle) Policy() ThrottlePolicy {
	return t.policy
}

// Check reports whether the key may attempt a login now
func (t *LoginThrottle) Check(ctx context.Context, key string) (ThrottleStatus, error) {
	now := t.now()
	attempts, err := t.store.Attempts(ctx, key, now, t.policy.Window)
	if err != nil {
		return ThrottleStatus{}, err
	}
	return t.status(attempts, now), nil
}

// RecordFailure stores a failed attempt and returns the new standing
func (t *LoginThrottle) RecordFailure(ctx context.Context, key string) (ThrottleStatus, error) {
	now := t.now()
	attempts, err := t.store.RecordFailure(ctx, key, now, t.policy.Window)
	if err != nil {
		return ThrottleStatus{}, err
	}
	return t.status(attempts, now), nil
}

// Reset clears the key after a successful login
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	return t.store.Clear(ctx, key)
}

func (t *LoginThrottle) status(attempts []time.Time, now time.Time) ThrottleStatus {
	count := len(attempts)
	st := ThrottleStatus{
		Attempts:          count,
		RemainingAttempts: t.policy.MaxAttempts - count,
	}
	if st.RemainingAttempts < 0 {
		st.RemainingAttempts = 0
	}
	if count >= t.policy.MaxAttempts {
		st.Blocked = true
		// The key unblocks when enough of the oldest attempts age out to
		// leave MaxAttempts-1 inside the window.
		pivot := attempts[count-t.policy.MaxAttempts]
		st.RetryAfter = pivot.Add(t.policy.Window).Sub(now)
		if st.RetryAfter < 0 {
			st.RetryAfter = 0
		}
	}
	return st
}

// ThrottleKey derives the throttle key for a login identifier
func ThrottleKey(email string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(email))
}

// PruneAttempts keeps the attempts newer than now-window, preserving order.
// Shared by the store implementations.
func PruneAttempts(attempts []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	kept := attempts[:0]
	for _, at := range attempts {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	return kept
}
