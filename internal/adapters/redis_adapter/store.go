// internal/adapters/redis_adapter/store.go
package redis_a

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

var _ ports.StorageAdapter = (*Store)(nil)

// Store is a durable storage adapter backed by Redis. Keys never expire.
type Store struct {
	client    redis.UniversalClient
	namespace string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewStore creates a Redis storage adapter scoped to namespace
func NewStore(client redis.UniversalClient, namespace string, logger *slog.Logger) *Store {
	return &Store{
		client:    client,
		namespace: namespace,
		timeout:   3 * time.Second,
		logger:    logger.With(slog.String("component", "redis_store")),
	}
}

func (s *Store) key(k string) string {
	return BuildKey(PrefixStorage, s.namespace, k)
}

func (s *Store) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		s.logger.Error("failed to write storage key",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
