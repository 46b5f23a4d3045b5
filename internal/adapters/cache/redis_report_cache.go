package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"market-dash-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReportCache stores computed report payloads as JSON under a key prefix.
type RedisReportCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisReportCache(client *redis.Client, prefix string) *RedisReportCache {
	return &RedisReportCache{Client: client, Prefix: prefix}
}

// Open parses a redis:// URL, connects, and verifies the server responds.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}
	return client, nil
}

func (c *RedisReportCache) key(k string) string {
	return c.Prefix + k
}

// Get decodes the cached value for key into dst. A miss returns false, nil.
func (c *RedisReportCache) Get(ctx context.Context, key string, dst any) (_ bool, err error) {
	defer obs.Time(ctx, "report.cache.Get")(&err)

	if c.Client == nil {
		return false, errors.New("report cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return false, errors.New("get report cache: key must not be empty")
	}

	raw, err := c.Client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get report cache key=%q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("get report cache key=%q: decode: %w", key, err)
	}
	return true, nil
}

// Set stores v as JSON. A zero ttl disables caching.
func (c *RedisReportCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.Client == nil {
		return errors.New("report cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("set report cache: key must not be empty")
	}
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("set report cache key=%q: encode: %w", key, err)
	}

	if err := c.Client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set report cache key=%q: %w", key, err)
	}
	return nil
}
