package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore is a bounded in-process store with expiry
type MemoryStore struct {
	lru    *expirable.LRU[string, []byte]
	config Config
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithConfig(DefaultConfig())
}

// NewMemoryStoreWithConfig creates a new in-memory store with custom configuration.
// The TTL of the store is fixed at construction time.
func NewMemoryStoreWithConfig(config Config) *MemoryStore {
	size := config.Size
	if size <= 0 {
		size = DefaultConfig().Size
	}
	return &MemoryStore{
		lru:    expirable.NewLRU[string, []byte](size, nil, config.DefaultTTL),
		config: config,
	}
}

// Get retrieves a value from the store
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, ok := m.lru.Get(m.config.Prefix + key)
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}
	return value, nil
}

// Set stores a value. The per-call TTL is ignored in favour of the store TTL.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lru.Add(m.config.Prefix+key, value)
	return nil
}

// Delete removes a value from the store
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lru.Remove(m.config.Prefix + key)
	return nil
}

// Clear removes all values from the store
func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lru.Purge()
	return nil
}

// Len returns the number of live entries
func (m *MemoryStore) Len() int {
	return m.lru.Len()
}
