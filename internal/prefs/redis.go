package prefs

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps visitor preferences in Redis under visitor:{id}:{key}.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(visitor, key string) string {
	return "visitor:" + visitor + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, visitor, key string) (string, error) {
	val, err := s.client.Get(ctx, redisKey(visitor, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, visitor, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, redisKey(visitor, key), value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, visitor, key string) error {
	return s.client.Del(ctx, redisKey(visitor, key)).Err()
}
