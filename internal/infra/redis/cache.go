package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/chainerr/pkg/logger"
)

const (
	// DefaultTTL is the default TTL for cached results
	DefaultTTL = 10 * time.Minute

	// KeyPrefix is the prefix for result cache keys
	KeyPrefix = "chainerr:result:"
)

// Cache represents a Redis-backed result cache shared by service replicas
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewCache creates a new result cache
func NewCache(client *redis.Client, log *logger.Logger) *Cache {
	return NewCacheWithTTL(client, DefaultTTL, log)
}

// NewCacheWithTTL creates a new result cache with custom TTL
func NewCacheWithTTL(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "cache"),
	}
}

// NewClient parses a redis:// URL into a client
func NewClient(url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	return redis.NewClient(opts), nil
}

func key(k string) string {
	return KeyPrefix + k
}

// Get retrieves a cached result
func (c *Cache) Get(ctx context.Context, k string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss")
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "error", err)
		return nil, false, fmt.Errorf("failed to get cached result: %w", err)
	}

	c.logger.Debug("cache hit")
	return val, true, nil
}

// Set stores a result in the cache with default TTL
func (c *Cache) Set(ctx context.Context, k string, value []byte) error {
	return c.SetWithTTL(ctx, k, value, c.ttl)
}

// SetWithTTL stores a result in the cache with custom TTL
func (c *Cache) SetWithTTL(ctx context.Context, k string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key(k), value, ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "error", err)
		return fmt.Errorf("failed to set cached result: %w", err)
	}
	return nil
}

// Delete removes a cached result
func (c *Cache) Delete(ctx context.Context, k string) error {
	return c.client.Del(ctx, key(k)).Err()
}

// Clear removes all cached results
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()

	pipe := c.client.Pipeline()
	count := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		count++
		if count >= 100 {
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			pipe = c.client.Pipeline()
			count = 0
		}
	}

	if count > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	return iter.Err()
}

// Ping checks the connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
