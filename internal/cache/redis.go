package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
)

// RedisCodes implements Codes backed by Redis. The TTL is enforced by Redis
// itself, so entries expire even across process restarts.
type RedisCodes struct {
	client *redis.Client
}

// NewRedisCodes connects to Redis and verifies the connection with a ping.
func NewRedisCodes(ctx context.Context, addr, password string, db int) (*RedisCodes, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCodes{client: client}, nil
}

// Set stores value under key for at most ttl.
func (c *RedisCodes) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}
	return nil
}

// Get returns the value for key, or ErrNotFound if absent/expired.
func (c *RedisCodes) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cache key: %w", err)
	}
	return val, nil
}

// Delete removes key.
func (c *RedisCodes) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *RedisCodes) Close() error {
	return c.client.Close()
}
