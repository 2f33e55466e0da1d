// Package rdx is the Redis side of the service: the connection and a small
// JSON response cache.
package rdx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"wanderlust/config"
)

// Cache keys.
const (
	FeaturedPackagesKey = "cache:packages:featured"
	packagePrefix       = "cache:packages:"
)

// PackageKey caches a single package response.
func PackageKey(id string) string {
	return packagePrefix + id
}

// Connect dials Redis and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return conn, nil
}

// Conn is the subset of *redis.Client the cache needs.
type Conn interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Cache struct {
	conn Conn
	ttl  time.Duration
}

// NewCache stores entries for ttl; invalidation normally drops them sooner.
func NewCache(conn Conn, ttl time.Duration) *Cache {
	return &Cache{conn: conn, ttl: ttl}
}

// Get returns the cached body. A miss is (nil, false, nil).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.conn.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return b, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, body []byte) error {
	if err := c.conn.Set(ctx, key, body, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.conn.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// KeysFor maps revalidated page paths to the cache entries behind them.
func KeysFor(paths ...string) []string {
	seen := map[string]bool{}
	var keys []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, p := range paths {
		switch {
		case p == "/" || p == "/packages" || p == "/admin/packages":
			add(FeaturedPackagesKey)
		case strings.HasPrefix(p, "/packages/"):
			add(FeaturedPackagesKey)
			add(PackageKey(strings.TrimPrefix(p, "/packages/")))
		}
	}
	return keys
}
