package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, returning ErrCacheMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetIfAbsent stores value only when key does not exist and reports
	// whether it was stored
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Increment atomically increments a counter, starting its expiry on the
	// first increment, and returns the new value and remaining lifetime
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error)

	// Delete removes values from cache
	Delete(ctx context.Context, keys ...string) error
}
