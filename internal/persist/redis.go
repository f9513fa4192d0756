package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend persists slices as plain Redis string values.
type RedisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// DialRedis parses a redis:// URL, connects and verifies the server answers.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Get loads the value stored for key.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value for key without expiry.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	removed, err := b.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Backend = (*RedisBackend)(nil)
