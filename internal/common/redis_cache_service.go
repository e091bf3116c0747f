package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/airtrack/internal/logging"
)

// RedisCacheService implements CacheInterface using Redis so several
// instances share one query cache
type RedisCacheService struct {
	client *redis.Client
	prefix string
	ctx    context.Context
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService wraps client, namespacing every key with prefix.
// It fails if Redis cannot be reached.
func NewRedisCacheService(client *redis.Client, prefix string) (*RedisCacheService, error) {
	if err := PingRedis(client); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCacheService{
		client: client,
		prefix: prefix,
		ctx:    context.Background(),
	}, nil
}

// Set stores a value in Redis with the given duration
func (r *RedisCacheService) Set(key string, value []byte, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	if err := r.client.Set(r.ctx, r.prefix+key, value, duration).Err(); err != nil {
		logging.Warn("Redis cache: failed to set key", "key", key, "error", err.Error())
	}
}

// Get retrieves a value from Redis by key
func (r *RedisCacheService) Get(key string) ([]byte, bool) {
	data, err := r.client.Get(r.ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis cache: failed to get key", "key", key, "error", err.Error())
		return nil, false
	}
	return data, true
}

// Delete removes a value from Redis by key
func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(r.ctx, r.prefix+key).Err(); err != nil {
		logging.Warn("Redis cache: failed to delete key", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) Ping() error {
	return PingRedis(r.client)
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}

// TTL returns the remaining time to live of a key
func (r *RedisCacheService) TTL(key string) (time.Duration, error) {
	return r.client.TTL(r.ctx, r.prefix+key).Result()
}
