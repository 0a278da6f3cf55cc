// Package cache provides the transient response cache shared by request
// handlers. A Redis-backed store is used when configured; otherwise an
// in-process store keeps the same semantics for development and tests.
package cache

import (
	"context"
	"time"
)

// Store is a minimal TTL key/value cache.
type Store interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error
}
