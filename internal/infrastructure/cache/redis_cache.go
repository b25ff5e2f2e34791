// Package cache implementa los puertos Cache y DocumentLocker sobre Redis, más variantes locales.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
)

var _ ports.Cache = (*RedisCache)(nil)

// RedisCache caché por etiquetas. La versión de cada etiqueta vive en cache:tag:<tag>.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache construye la caché. ttl aplica a las entradas, no a las versiones.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func tagKey(tag string) string { return "cache:tag:" + tag }

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// TagVersion devuelve 0 si la etiqueta nunca se invalidó.
func (c *RedisCache) TagVersion(ctx context.Context, tag string) (int64, error) {
	v, err := c.rdb.Get(ctx, tagKey(tag)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis tag version %s: %w", tag, err)
	}
	return v, nil
}

// Invalidate incrementa la versión de cada etiqueta en un solo round-trip.
func (c *RedisCache) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, tag := range tags {
			p.Incr(ctx, tagKey(tag))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
