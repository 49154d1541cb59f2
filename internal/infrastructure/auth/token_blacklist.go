package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs before they expire. Individual tokens are
// revoked by JTI on logout; all sessions of a user are revoked at once when
// the user is deleted or demoted.
type TokenBlacklist interface {
	// RevokeToken blacklists one token until ttl elapses
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the JTI is blacklisted
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser rejects every token of the user issued up to now
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserRevoked reports whether a token issued at issuedAt predates the user's revocation
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// CheckClaims returns ErrTokenBlacklisted when the claims were revoked
func CheckClaims(ctx context.Context, blacklist TokenBlacklist, claims *Claims) error {
	if blacklist == nil {
		return nil
	}
	revoked, err := blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenBlacklisted
	}
	revoked, err = blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenBlacklisted
	}
	return nil
}

const defaultBlacklistPrefix = "jewelry:auth:revoked:"

// RedisTokenBlacklist stores revocations in Redis so they are shared by every
// API instance
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenBlacklist creates a blacklist on an existing Redis client
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: defaultBlacklistPrefix,
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) userKey(userID string) string {
	return b.keyPrefix + "user:" + userID
}

// RevokeToken sets a marker key that expires with the token
func (b *RedisTokenBlacklist) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks for the JTI marker key
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// RevokeUser stores the revocation time in unix seconds
func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsUserRevoked compares issuedAt with the stored revocation time
func (b *RedisTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}

	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revocations in process memory. It is used when
// Redis is not configured and in tests; revocations do not survive restarts.
type InMemoryTokenBlacklist struct {
	mu        sync.Mutex
	tokens    map[string]time.Time // jti -> expiry
	users     map[string]time.Time // userID -> revocation time
	userUntil map[string]time.Time // userID -> expiry
	now       func() time.Time
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:    make(map[string]time.Time),
		users:     make(map[string]time.Time),
		userUntil: make(map[string]time.Time),
		now:       time.Now,
	}
}

// RevokeToken records the JTI and drops expired entries
func (b *InMemoryTokenBlacklist) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for k, exp := range b.tokens {
		if now.After(exp) {
			delete(b.tokens, k)
		}
	}
	b.tokens[jti] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether the JTI is present and unexpired
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.tokens[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(exp) {
		delete(b.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUser records the revocation time for the user
func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.users[userID] = now
	if ttl > 0 {
		b.userUntil[userID] = now.Add(ttl)
	} else {
		delete(b.userUntil, userID)
	}
	return nil
}

// IsUserRevoked reports whether issuedAt is at or before the user's revocation
func (b *InMemoryTokenBlacklist) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	revokedAt, ok := b.users[userID]
	if !ok {
		return false, nil
	}
	if until, ok := b.userUntil[userID]; ok && b.now().After(until) {
		delete(b.users, userID)
		delete(b.userUntil, userID)
		return false, nil
	}
	return !issuedAt.After(revokedAt), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
