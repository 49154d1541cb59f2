package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jewelry/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStoreFactory_RedisDisabledUsesInMemory(t *testing.T) {
	f := NewStoreFactory(config.RedisConfig{}, config.CartConfig{TTL: time.Hour}, WithLogger(zaptest.NewLogger(t)))

	stores, err := f.CreateStores(context.Background())
	require.NoError(t, err)
	defer stores.Close()

	assert.Nil(t, stores.Redis)
	assert.IsType(t, &InMemoryCartStore{}, stores.Carts)
	assert.IsType(t, &InMemoryLoginAttemptStore{}, stores.LoginAttempts)
	assert.NotNil(t, stores.Blacklist)
}

func TestStoreFactory_UnreachableRedis(t *testing.T) {
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("falls back", func(t *testing.T) {
		f := NewStoreFactory(unreachable, config.CartConfig{})
		stores, err := f.CreateStores(context.Background())
		require.NoError(t, err)
		defer stores.Close()
		assert.Nil(t, stores.Redis)
	})

	t.Run("fails without fallback", func(t *testing.T) {
		f := NewStoreFactory(unreachable, config.CartConfig{}, WithInMemoryFallback(false))
		_, err := f.CreateStores(context.Background())
		assert.Error(t, err)
	})
}
