// Package memory provides the in-process result cache backed by BigCache
package memory

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/kislikjeka/chainerr/pkg/logger"
)

const (
	// DefaultTTL is the lifetime of a cached result
	DefaultTTL = 10 * time.Minute

	// DefaultMaxSizeMB bounds the cache; the oldest entries are evicted first
	DefaultMaxSizeMB = 64

	expiryHeader = 8
)

// Cache is a size-bounded result cache. Entries carry their own expiry and
// are dropped lazily when read after it.
type Cache struct {
	cache  *bigcache.BigCache
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewCache creates an in-memory cache. Non-positive values use the defaults.
func NewCache(ttl time.Duration, maxSizeMB int, log *logger.Logger) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}

	config := bigcache.DefaultConfig(ttl)
	config.HardMaxCacheSize = maxSizeMB
	config.Shards = 64
	config.MaxEntriesInWindow = 1024
	config.MaxEntrySize = 1024
	// expiry is checked on read
	config.CleanWindow = 0
	config.Verbose = false

	cache, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &Cache{
		cache:  cache,
		ttl:    ttl,
		logger: log.WithField("component", "cache"),
		now:    time.Now,
	}, nil
}

// Get returns a cached value. Expired entries are removed and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := c.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "error", err)
		return nil, false, fmt.Errorf("failed to get cached result: %w", err)
	}
	if len(entry) < expiryHeader {
		_ = c.cache.Delete(key)
		return nil, false, nil
	}

	expiresAt := int64(binary.BigEndian.Uint64(entry[:expiryHeader]))
	if c.now().UnixNano() >= expiresAt {
		c.logger.Debug("cache entry expired")
		_ = c.cache.Delete(key)
		return nil, false, nil
	}

	value := make([]byte, len(entry)-expiryHeader)
	copy(value, entry[expiryHeader:])
	return value, true, nil
}

// Set stores a value with the default TTL
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := make([]byte, expiryHeader+len(value))
	binary.BigEndian.PutUint64(entry, uint64(c.now().Add(ttl).UnixNano()))
	copy(entry[expiryHeader:], value)

	if err := c.cache.Set(key, entry); err != nil {
		c.logger.Error("cache error", "operation", "set", "error", err)
		return fmt.Errorf("failed to set cached result: %w", err)
	}
	return nil
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return fmt.Errorf("failed to delete cached result: %w", err)
	}
	return nil
}

// Clear removes every cached value
func (c *Cache) Clear(ctx context.Context) error {
	return c.cache.Reset()
}

// Len returns the number of stored entries, expired ones included
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Close releases the cache
func (c *Cache) Close() error {
	return c.cache.Close()
}
