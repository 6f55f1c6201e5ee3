package testredis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

// TestRedis represents a test Redis instance
type TestRedis struct {
	Container *redis.RedisContainer
	Client    *goredis.Client
	URL       string
}

// NewTestRedis starts a Redis container and connects to it
func NewTestRedis(ctx context.Context) (*TestRedis, error) {
	container, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	opts, err := goredis.ParseURL(url)
	if err != nil {
		testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &TestRedis{
		Container: container,
		Client:    client,
		URL:       url,
	}, nil
}

// Close closes the client and terminates the container
func (r *TestRedis) Close(ctx context.Context) error {
	if r.Client != nil {
		r.Client.Close()
	}
	if r.Container != nil {
		return r.Container.Terminate(ctx)
	}
	return nil
}

// Flush removes every key
func (r *TestRedis) Flush(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
