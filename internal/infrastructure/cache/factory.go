package cache

import (
	"context"
	"fmt"

	"github.com/erp/cashdesk/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SettlementStoreFactory creates settlement session stores based on configuration
type SettlementStoreFactory struct {
	settlement            config.SettlementConfig
	redis                 config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SettlementStoreFactoryOption is a functional option for configuring the factory
type SettlementStoreFactoryOption func(*SettlementStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SettlementStoreFactoryOption {
	return func(f *SettlementStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) SettlementStoreFactoryOption {
	return func(f *SettlementStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSettlementStoreFactory creates a new factory
func NewSettlementStoreFactory(settlement config.SettlementConfig, redisCfg config.RedisConfig, opts ...SettlementStoreFactoryOption) *SettlementStoreFactory {
	f := &SettlementStoreFactory{
		settlement:            settlement,
		redis:                 redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the configured store. A configured but unreachable
// Redis falls back to memory when allowed; sessions are then only visible to
// this instance.
func (f *SettlementStoreFactory) CreateStore(ctx context.Context) (SettlementStore, error) {
	if f.settlement.SessionStore != "redis" {
		f.logger.Info("using in-memory settlement session store")
		return NewInMemorySettlementStore(f.settlement.SessionTTL), nil
	}

	store, err := NewRedisSettlementStore(ctx, &redis.Options{
		Addr:     f.redis.Addr(),
		Password: f.redis.Password,
		DB:       f.redis.DB,
	}, f.settlement.SessionTTL)
	if err == nil {
		f.logger.Info("using Redis settlement session store", zap.String("addr", f.redis.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for settlement sessions but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory settlement session store",
		zap.Error(err),
	)
	return NewInMemorySettlementStore(f.settlement.SessionTTL), nil
}
