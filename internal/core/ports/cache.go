// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository defines the read-through cache used for aggregate reads
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error
	Ping(ctx context.Context) error
}
