// Package cache provides the key-value accelerator sitting in front of
// the task store. The cache never talks to the store itself; the service
// layer orchestrates miss-then-fetch and write-then-invalidate. Entries
// are derived data and must always be rebuildable from the store.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a key-value store with per-entry expiration.
type Cache interface {
	// Get returns the cached value or ErrMiss.
	Get(ctx context.Context, key string) (string, error)
	// Set stores a value, overwriting any existing entry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes an entry. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}

// TasksKey is the cache key holding a user's serialized task list.
func TasksKey(userID string) string {
	return "tasks:" + userID
}
