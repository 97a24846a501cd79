package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// RedisStore shares cached lookups between processes
type RedisStore struct {
	client *redis.Client
	config Config
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Config holds common cache configuration
	Config Config
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Config: DefaultConfig(),
	}
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, config RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, apperror.Critical(CodeUnavailable, "cannot reach redis at %s", config.Addr).Wrap(err)
	}

	return NewRedisStoreWithClient(client, config.Config), nil
}

// NewRedisStoreWithClient creates a store with an existing client
func NewRedisStoreWithClient(client *redis.Client, config Config) *RedisStore {
	return &RedisStore{
		client: client,
		config: config,
	}
}

// Get retrieves a value from the cache
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.config.Prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss{Key: key}
		}
		return nil, unavailable("get", key, err)
	}
	return value, nil
}

// Set stores a value in the cache with a TTL
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}
	if err := r.client.Set(ctx, r.config.Prefix+key, value, ttl).Err(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

// Delete removes a value from the cache
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.config.Prefix+key).Err(); err != nil {
		return unavailable("delete", key, err)
	}
	return nil
}

// Clear removes every key under the configured prefix
func (r *RedisStore) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.config.Prefix+"*", clearBatch).Iterator()
	batch := make([]string, 0, clearBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := r.client.Unlink(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			if err := flush(); err != nil {
				return unavailable("clear", r.config.Prefix+"*", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return unavailable("clear", r.config.Prefix+"*", err)
	}
	if err := flush(); err != nil {
		return unavailable("clear", r.config.Prefix+"*", err)
	}
	return nil
}

// clearBatch bounds the keys removed per UNLINK
const clearBatch = 256

func unavailable(op, key string, err error) error {
	return apperror.Critical(CodeUnavailable, "redis %s failed", op).
		WithDetail("key", key).
		Wrap(err)
}

// Close closes the underlying client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
