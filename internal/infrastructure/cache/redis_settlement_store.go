package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultSessionKeyPrefix = "cashdesk:settlement:"

// RedisSettlementStore keeps open settlement sessions in Redis so that any
// instance behind the load balancer can continue a session.
// Saves run inside WATCH/MULTI, so two instances racing on the same session
// cannot both win.
type RedisSettlementStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSettlementStore connects to Redis and verifies the connection
func NewRedisSettlementStore(ctx context.Context, opts *redis.Options, ttl time.Duration) (*RedisSettlementStore, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisSettlementStoreWithClient(client, "", ttl), nil
}

// NewRedisSettlementStoreWithClient creates a store with an existing client
func NewRedisSettlementStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSettlementStore {
	if keyPrefix == "" {
		keyPrefix = defaultSessionKeyPrefix
	}
	return &RedisSettlementStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisSettlementStore) key(id uuid.UUID) string {
	return s.keyPrefix + id.String()
}

// FindByID loads a session of the tenant
func (s *RedisSettlementStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.SettlementSession, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement session: %w", err)
	}
	session, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	if session.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

// Save stores the session if its version follows the stored one and
// refreshes its expiry
func (s *RedisSettlementStore) Save(ctx context.Context, session *finance.SettlementSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	key := s.key(session.ID)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if err := checkVersion(session, uuid.Nil, 0, false); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			stored, err := decodeSession(current)
			if err != nil {
				return err
			}
			if err := checkVersion(session, stored.TenantID, stored.Version, true); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return shared.ErrConcurrencyConflict
	case errors.Is(err, shared.ErrConcurrencyConflict):
		return err
	default:
		return fmt.Errorf("failed to save settlement session: %w", err)
	}
}

// Delete removes the session of the tenant. Unknown sessions are ignored.
func (s *RedisSettlementStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.FindByID(ctx, tenantID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete settlement session: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisSettlementStore) Close() error {
	return s.client.Close()
}

var _ SettlementStore = (*RedisSettlementStore)(nil)
