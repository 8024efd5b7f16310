package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"expensetracker/internal/log"
)

// RedisCache stores JSON encoded values under a key prefix.
type RedisCache[T any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisCache[T any](client redis.UniversalClient, prefix string, ttl time.Duration, logger *log.Logger) *RedisCache[T] {
	return &RedisCache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.WithComponent(log.ComponentCache),
	}
}

func (c *RedisCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "Redis get failed", "key", key, log.FieldError, err)
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.WarnContext(ctx, "Discarding undecodable cache entry", "key", key, log.FieldError, err)
		c.Delete(ctx, key)
		return zero, false
	}
	return v, true
}

func (c *RedisCache[T]) Set(ctx context.Context, key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.WarnContext(ctx, "Cache value not encodable", "key", key, log.FieldError, err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis set failed", "key", key, log.FieldError, err)
	}
}

func (c *RedisCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis delete failed", "key", key, log.FieldError, err)
	}
}

// Clear deletes every key under the prefix.
func (c *RedisCache[T]) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis scan failed", log.FieldError, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis clear failed", log.FieldError, err)
	}
}
