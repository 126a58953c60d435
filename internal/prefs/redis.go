package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps preferences under "prefs:<key>" with no expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := r.client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	return decodeBool(key, raw)
}

func (r *RedisStore) SetBool(ctx context.Context, key string, v bool) error {
	if err := r.client.Set(ctx, redisKey(key), encodeBool(v), 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func redisKey(key string) string {
	return fmt.Sprintf("prefs:%s", key)
}
