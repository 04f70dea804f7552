package geosource

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache：原始 GeoJSON 响应体缓存；未命中返回 ok=false 且 err=nil
type Cache interface {
	Get(ctx context.Context, key string) (body []byte, ok bool, err error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// RedisCache：以 Redis 字符串保存响应体
type RedisCache struct {
	rc *redis.Client
}

// NewRedisCache：rc 为空时返回 nil，调用方据此跳过缓存
func NewRedisCache(rc *redis.Client) *RedisCache {
	if rc == nil {
		return nil
	}
	return &RedisCache{rc: rc}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rc.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	return c.rc.Set(ctx, key, body, ttl).Err()
}

func cacheKey(url string) string { return "geojson:" + url }
