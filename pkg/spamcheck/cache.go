package spamcheck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerdictCache remembers classifier answers for identical texts.
type VerdictCache interface {
	Get(ctx context.Context, text string) (verdict bool, found bool, err error)
	Set(ctx context.Context, text string, verdict bool) error
}

// RedisVerdictCache stores verdicts under the SHA-256 of the text.
type RedisVerdictCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisVerdictCache(redisURL string, ttl time.Duration) (*RedisVerdictCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisVerdictCacheWithClient(client, ttl), nil
}

func NewRedisVerdictCacheWithClient(client *redis.Client, ttl time.Duration) *RedisVerdictCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisVerdictCache{
		client: client,
		prefix: "spam-verdict:",
		ttl:    ttl,
	}
}

func (c *RedisVerdictCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

func (c *RedisVerdictCache) Get(ctx context.Context, text string) (bool, bool, error) {
	value, err := c.client.Get(ctx, c.key(text)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("lookup verdict: %w", err)
	}
	return value == "1", true, nil
}

func (c *RedisVerdictCache) Set(ctx context.Context, text string, verdict bool) error {
	value := "0"
	if verdict {
		value = "1"
	}
	if err := c.client.Set(ctx, c.key(text), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("save verdict: %w", err)
	}
	return nil
}

func (c *RedisVerdictCache) Close() error {
	return c.client.Close()
}
