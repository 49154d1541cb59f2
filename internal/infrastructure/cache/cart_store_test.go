package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCartStore_GetMissingReturnsEmpty(t *testing.T) {
	store := NewInMemoryCartStore(time.Hour)
	defer store.Close()

	userID := uuid.New()
	c, err := store.Get(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, userID, c.UserID)
	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Items)
}

func TestInMemoryCartStore_SaveAndGet(t *testing.T) {
	store := NewInMemoryCartStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	userID := uuid.New()
	productID := uuid.New()
	c := cart.New(userID)
	require.NoError(t, c.Add(productID, 2, 10))
	require.NoError(t, store.Save(ctx, c))

	// Mutating the caller's cart must not leak into the store
	c.Items[0].Quantity = 9

	loaded, err := store.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, productID, loaded.Items[0].ProductID)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
}

func TestInMemoryCartStore_SaveEmptyDeletes(t *testing.T) {
	store := NewInMemoryCartStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	userID := uuid.New()
	c := cart.New(userID)
	require.NoError(t, c.Add(uuid.New(), 1, 5))
	require.NoError(t, store.Save(ctx, c))
	assert.Equal(t, 1, store.Size())

	require.NoError(t, store.Save(ctx, cart.New(userID)))
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryCartStore_Expiration(t *testing.T) {
	store := NewInMemoryCartStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	userID := uuid.New()
	c := cart.New(userID)
	require.NoError(t, c.Add(uuid.New(), 1, 5))
	require.NoError(t, store.Save(ctx, c))

	time.Sleep(20 * time.Millisecond)

	loaded, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())

	store.cleanup()
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryCartStore_Delete(t *testing.T) {
	store := NewInMemoryCartStore(0)
	defer store.Close()
	ctx := context.Background()

	userID := uuid.New()
	c := cart.New(userID)
	require.NoError(t, c.Add(uuid.New(), 1, 5))
	require.NoError(t, store.Save(ctx, c))
	require.NoError(t, store.Delete(ctx, userID))

	loaded, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestInMemoryCartStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryCartStore(time.Hour)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
