// Package cache defines the small key/value cache contract the readiness
// reporter's HTTP-layer memoization wraps, and a Badger-backed
// implementation of it.
package cache

import (
	"context"
	"time"
)

// Cache stores short-lived JSON-serialized values keyed by string.
type Cache interface {
	Get(ctx context.Context, key string, value any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Close() error
}
