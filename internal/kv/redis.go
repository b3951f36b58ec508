package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the Redis-backed key-value blob store. Keys are namespaced
// by a scope string, e.g. "routtie:user:42".
type RedisStore struct {
	client *redis.Client
	scope  string
}

func NewRedisStore(client *redis.Client, scope string) *RedisStore {
	return &RedisStore{
		client: client,
		scope:  scope,
	}
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("%s:%s", s.scope, key)
}

// Get returns the stored blob, or nil when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	scoped := make([]string, len(keys))
	for i, k := range keys {
		scoped[i] = s.key(k)
	}
	return s.client.Del(ctx, scoped...).Err()
}
