// Package cache provides the read-through stores behind translation and
// option-list lookups. Stores are safe for concurrent use; a miss raced by two
// requests may compute the same value twice, which is harmless.
package cache

import (
	"context"
	"errors"
	"time"
)

// Store defines the interface for all cache backends
type Store interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache
	Clear(ctx context.Context) error
}

// Config holds common configuration for cache backends
type Config struct {
	// DefaultTTL is the default time-to-live for cached items
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys
	Prefix string
	// Size bounds the number of entries held in process
	Size int
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 10 * time.Minute,
		Prefix:     "recordtree:",
		Size:       4096,
	}
}

// ErrCacheMiss is returned when a key is not found in the cache
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	var miss ErrCacheMiss
	return errors.As(err, &miss)
}

// GetOrLoad implements cache-aside: it returns the cached value for key or
// calls load, stores its result and returns it. Store failures other than a
// miss are reported through onStoreErr and never fail the lookup.
func GetOrLoad(
	ctx context.Context,
	store Store,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) ([]byte, error),
	onStoreErr func(error),
) ([]byte, error) {
	if store != nil {
		value, err := store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if !IsCacheMiss(err) && onStoreErr != nil {
			onStoreErr(err)
		}
	}

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.Set(ctx, key, value, ttl); err != nil && onStoreErr != nil {
			onStoreErr(err)
		}
	}
	return value, nil
}
