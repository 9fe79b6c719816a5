// Package cache is a thin JSON cache over Redis. Every call is nil-safe so
// components can cache opportunistically without caring whether Redis is up.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pochi-app/pochi-web/internal/database"
)

const keyPrefix = "cache:"

// Get retrieves a value. A miss or a Redis error both read as (false, nil);
// a cache problem is never a caller problem.
func Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if database.RedisClient == nil {
		return false, nil
	}
	val, err := database.RedisClient.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value with the given TTL.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if database.RedisClient == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(ctx, keyPrefix+key, data, ttl).Err()
}

// Delete removes a key.
func Delete(ctx context.Context, key string) error {
	if database.RedisClient == nil {
		return nil
	}
	return database.RedisClient.Del(ctx, keyPrefix+key).Err()
}
