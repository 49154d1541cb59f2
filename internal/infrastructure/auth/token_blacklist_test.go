package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jewelry/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_RevokeToken(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.RevokeToken(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_Expiration(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.RevokeToken(ctx, "jti-short", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	revoked, err := blacklist.IsRevoked(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_IgnoresExpiredTTL(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.RevokeToken(ctx, "jti-zero", 0))

	revoked, err := blacklist.IsRevoked(ctx, "jti-zero")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issuedBefore := time.Now().Add(-time.Hour)

	revoked, err := blacklist.IsUserRevoked(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.RevokeUser(ctx, "user-1", time.Hour))

	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = blacklist.IsUserRevoked(ctx, "user-2", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestCheckClaims(t *testing.T) {
	ctx := context.Background()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       "jti-1",
			IssuedAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: "user-1",
	}

	t.Run("nil blacklist allows", func(t *testing.T) {
		assert.NoError(t, auth.CheckClaims(ctx, nil, claims))
	})

	t.Run("revoked jti", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.RevokeToken(ctx, "jti-1", time.Hour))
		assert.ErrorIs(t, auth.CheckClaims(ctx, blacklist, claims), auth.ErrTokenBlacklisted)
	})

	t.Run("revoked user", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.RevokeUser(ctx, "user-1", time.Hour))
		assert.ErrorIs(t, auth.CheckClaims(ctx, blacklist, claims), auth.ErrTokenBlacklisted)
	})

	t.Run("clean", func(t *testing.T) {
		assert.NoError(t, auth.CheckClaims(ctx, auth.NewInMemoryTokenBlacklist(), claims))
	})
}

func TestTokenBlacklist_Interface(t *testing.T) {
	var _ auth.TokenBlacklist = (*auth.InMemoryTokenBlacklist)(nil)
	var _ auth.TokenBlacklist = (*auth.RedisTokenBlacklist)(nil)
}
