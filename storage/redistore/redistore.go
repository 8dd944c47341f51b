// Package redistore provides a Redis-backed storage.Store for server-side
// consumers that hold credentials on behalf of many users and need them
// shared across processes.
package redistore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hrsphere/go-client/storage"
)

// RedisStore persists keyed values in Redis under a configurable key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ storage.Store = (*RedisStore)(nil)

// New creates a Redis-backed store. The prefix namespaces every key so
// multiple sessions can share one Redis database.
func New(client *redis.Client, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if prefix == "" {
		prefix = "hrsphere"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Get retrieves the value stored under key.
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any existing value.
func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	deleted, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	if deleted == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *RedisStore) key(key string) string {
	return r.prefix + ":" + key
}
