package cache

import (
	"context"
	"time"

	"washman/backend/pkg/redis"
)

// redisCache 基于 Redis 的缓存实现
type redisCache struct {
	client *redis.Client
}

// NewRedisCache 使用已连接的 Redis 客户端
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return c.client.GetJSON(ctx, key, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.client.SetJSON(ctx, key, value, ttl)
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Delete(ctx, keys...)
}
