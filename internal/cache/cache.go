package cache

import (
	"context"
	"time"
)

// DefaultTTL bounds the staleness of every read cache; invalidation on write
// is the primary freshness mechanism, the TTL is the backstop.
const DefaultTTL = 60 * time.Second

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
