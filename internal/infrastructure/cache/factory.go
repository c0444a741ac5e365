package cache

import (
	"fmt"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RunLockStoreFactory creates run lock stores based on configuration
type RunLockStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RunLockStoreFactoryOption is a functional option for configuring the factory
type RunLockStoreFactoryOption func(*RunLockStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RunLockStoreFactoryOption {
	return func(f *RunLockStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) RunLockStoreFactoryOption {
	return func(f *RunLockStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRunLockStoreFactory creates a new factory
func NewRunLockStoreFactory(cfg config.RedisConfig, opts ...RunLockStoreFactoryOption) *RunLockStoreFactory {
	f := &RunLockStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based run lock store
func (f *RunLockStoreFactory) CreateRedisStore() (shared.RunLockStore, error) {
	store, err := NewRedisRunLockStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis run lock store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory run lock store.
// Suitable for single-instance deployments and testing.
func (f *RunLockStoreFactory) CreateInMemoryStore() shared.RunLockStore {
	return NewInMemoryRunLockStore()
}

// CreateStore creates a run lock store, preferring Redis and falling back to
// the in-memory store when Redis is unavailable and fallback is allowed.
func (f *RunLockStoreFactory) CreateStore() (shared.RunLockStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis run lock store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for run locks but unavailable: %w", err)
	}

	// An in-memory lock only guards against concurrent runs inside this
	// process; a second instance would not see it.
	f.logger.Warn("Redis unavailable, falling back to in-memory run lock store",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
