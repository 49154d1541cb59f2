package cache

import (
	"context"
	"fmt"

	"github.com/jewelry/backend/internal/domain/cart"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/infrastructure/auth"
	"github.com/jewelry/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the key-value stores used by the API
type Stores struct {
	Carts         cart.Store
	LoginAttempts identity.LoginAttemptStore
	Blacklist     auth.TokenBlacklist
	// Redis is nil when the in-memory stores are in use
	Redis *redis.Client
}

// Close releases the Redis client or stops the in-memory sweepers
func (s *Stores) Close() error {
	if s.Redis != nil {
		return s.Redis.Close()
	}
	if closer, ok := s.Carts.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	cartConfig            config.CartConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(redisCfg config.RedisConfig, cartCfg config.CartConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           redisCfg,
		cartConfig:            cartCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemoryStores creates process-local stores. Carts, throttles and
// revocations are not shared between instances.
func (f *StoreFactory) CreateInMemoryStores() *Stores {
	return &Stores{
		Carts:         NewInMemoryCartStore(f.cartConfig.TTL),
		LoginAttempts: NewInMemoryLoginAttemptStore(),
		Blacklist:     auth.NewInMemoryTokenBlacklist(),
	}
}

// CreateRedisStores connects to Redis and creates the shared stores
func (f *StoreFactory) CreateRedisStores(ctx context.Context) (*Stores, error) {
	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Carts:         NewRedisCartStore(client, f.cartConfig.TTL),
		LoginAttempts: NewRedisLoginAttemptStore(client),
		Blacklist:     auth.NewRedisTokenBlacklist(client),
		Redis:         client,
	}, nil
}

// CreateStores uses Redis when configured and reachable, otherwise the
// in-memory stores if fallback is allowed
func (f *StoreFactory) CreateStores(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled() {
		f.logger.Info("Redis not configured, using in-memory stores")
		return f.CreateInMemoryStores(), nil
	}

	stores, err := f.CreateRedisStores(ctx)
	if err == nil {
		f.logger.Info("using Redis stores", zap.String("addr", f.redisConfig.Addr()))
		return stores, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Carts and sessions will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}
