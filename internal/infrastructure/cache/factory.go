package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/orderboard/backend/internal/domain/shared"
	"github.com/orderboard/backend/internal/infrastructure/config"
)

// IdempotencyStoreFactory creates webhook dedupe stores based on configuration
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory store when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based idempotency store
func (f *IdempotencyStoreFactory) CreateRedisStore() (shared.IdempotencyStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisIdempotencyStore(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory idempotency store
// This is suitable for single-instance deployments and testing
// WARNING: In-memory stores do not share state across process instances,
// which can lead to duplicate webhook processing in distributed deployments
func (f *IdempotencyStoreFactory) CreateInMemoryStore() shared.IdempotencyStore {
	return NewInMemoryIdempotencyStore()
}

// CreateStore creates an idempotency store of the requested kind. For
// "redis" the factory falls back to the in-memory store when Redis is
// unreachable, unless fallback is disabled.
func (f *IdempotencyStoreFactory) CreateStore(kind string) (shared.IdempotencyStore, error) {
	switch kind {
	case "memory", "":
		f.logger.Info("using in-memory webhook dedupe store")
		return f.CreateInMemoryStore(), nil

	case "redis":
		store, err := f.CreateRedisStore()
		if err == nil {
			f.logger.Info("using Redis webhook dedupe store")
			return store, nil
		}

		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for webhook dedupe but unavailable: %w", err)
		}

		f.logger.Warn("Redis unavailable, falling back to in-memory webhook dedupe store. "+
			"This may cause duplicate webhook processing in distributed deployments.",
			zap.Error(err),
		)
		return f.CreateInMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown idempotency store kind: %s", kind)
	}
}
