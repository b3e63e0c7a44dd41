// Package cache stores HS classifications between runs.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/Atarvano/ManifestAi/internal/config"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client is a byte-value cache. Set's ttl is honored per key where the
// backend supports it; a zero TTL never expires.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Purge removes every key starting with prefix and reports how many went.
	Purge(ctx context.Context, prefix string) (int, error)
	Close() error
}

// New builds the client selected by cfg.Driver. It returns nil for "none".
func New(ctx context.Context, cfg config.CacheConfig) (Client, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryClient(cfg.MaxEntries, cfg.TTL), nil
	case "redis":
		c, err := NewRedisClient(ctx, RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// Key joins key segments with ":".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	// Prefix namespaces every key; defaults to "manifest:".
	Prefix string
}

// RedisClient shares classifications across machines and runs.
type RedisClient struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "manifest:"
	}
	return &RedisClient{rdb: rdb, prefix: prefix}, nil
}

func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Purge scans in batches and unlinks matches, so large key spaces do not
// block the server.
func (c *RedisClient) Purge(ctx context.Context, prefix string) (int, error) {
	const batch = 200

	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.prefix+prefix+"*", batch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Unlink(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis unlink: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

// MemoryClient is a bounded least-recently-used cache for a single process.
// Every entry shares the TTL given at construction; the per-call TTL of Set
// is ignored.
type MemoryClient struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryClient creates a memory cache holding at most max entries, each
// expiring ttl after it was written. A zero ttl never expires.
func NewMemoryClient(max int, ttl time.Duration) *MemoryClient {
	if max <= 0 {
		max = 10000
	}
	return &MemoryClient{lru: expirable.NewLRU[string, []byte](max, nil, ttl)}
}

func (c *MemoryClient) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return val, nil
}

func (c *MemoryClient) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	c.lru.Add(key, value)
	return nil
}

func (c *MemoryClient) Purge(ctx context.Context, prefix string) (int, error) {
	removed := 0
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) && c.lru.Remove(key) {
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of held entries, including expired ones not yet
// swept.
func (c *MemoryClient) Len() int {
	return c.lru.Len()
}

func (c *MemoryClient) Close() error { return nil }
