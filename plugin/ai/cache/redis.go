package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hrygo/acutie/plugin/ai/timeout"
)

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string        // default: "acutie:"
	DefaultTTL time.Duration // default: timeout.SessionTTL
}

// RedisCache is a CacheService shared across processes.
type RedisCache struct {
	rdb        *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout.CacheOpTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return newRedisCache(rdb, cfg), nil
}

func newRedisCache(rdb *redis.Client, cfg RedisConfig) *RedisCache {
	c := &RedisCache{rdb: rdb, prefix: cfg.KeyPrefix, defaultTTL: cfg.DefaultTTL}
	if c.prefix == "" {
		c.prefix = "acutie:"
	}
	if c.defaultTTL <= 0 {
		c.defaultTTL = timeout.SessionTTL
	}
	return c
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout.CacheOpTimeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("redis get failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.CacheOpTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout.CacheOpTimeout)
	defer cancel()

	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Invalidate walks matching keys with SCAN so large keyspaces never block the server.
func (c *RedisCache) Invalidate(ctx context.Context, pattern string) error {
	if !strings.HasSuffix(pattern, "*") {
		return c.Delete(ctx, pattern)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.StoreOpTimeout)
	defer cancel()

	iter := c.rdb.Scan(ctx, 0, c.prefix+pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis invalidate %s: %w", pattern, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis invalidate %s: %w", pattern, err)
		}
	}
	return nil
}

var _ CacheService = (*RedisCache)(nil)
