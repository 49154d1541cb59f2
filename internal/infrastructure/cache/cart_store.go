package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix  = "jewelry:cart:"
	DefaultCartTTL = 30 * 24 * time.Hour
)

// RedisCartStore stores each cart as a JSON document under the user's key
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore creates a cart store on an existing Redis client
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &RedisCartStore{client: client, keyPrefix: cartKeyPrefix, ttl: ttl}
}

func (s *RedisCartStore) key(userID uuid.UUID) string {
	return s.keyPrefix + userID.String()
}

// Get loads the cart or returns an empty one
func (s *RedisCartStore) Get(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	c.UserID = userID
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	return &c, nil
}

// Save writes the cart and refreshes its TTL. An empty cart deletes the key.
func (s *RedisCartStore) Save(ctx context.Context, c *cart.Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, c.UserID)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(c.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart key
func (s *RedisCartStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

var _ cart.Store = (*RedisCartStore)(nil)

type cartEntry struct {
	items     []cart.Item
	updatedAt time.Time
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in process memory with the same TTL
// semantics as the Redis store
type InMemoryCartStore struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]cartEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCartStore creates the store and starts its expiry sweeper
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	s := &InMemoryCartStore{
		entries:  make(map[uuid.UUID]cartEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// Get returns a copy of the stored cart or an empty one
func (s *InMemoryCartStore) Get(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[userID]
	if !ok || time.Now().After(e.expiresAt) {
		return cart.New(userID), nil
	}
	return &cart.Cart{
		UserID:    userID,
		Items:     append([]cart.Item{}, e.items...),
		UpdatedAt: e.updatedAt,
	}, nil
}

// Save stores a copy of the cart
func (s *InMemoryCartStore) Save(ctx context.Context, c *cart.Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, c.UserID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[c.UserID] = cartEntry{
		items:     append([]cart.Item{}, c.Items...),
		updatedAt: c.UpdatedAt,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Delete removes the cart
func (s *InMemoryCartStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// Size returns the number of stored carts, expired ones included
func (s *InMemoryCartStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryCartStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryCartStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryCartStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

var _ cart.Store = (*InMemoryCartStore)(nil)
