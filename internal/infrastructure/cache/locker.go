package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

var (
	_ ports.DocumentLocker = (*RedisLocker)(nil)
	_ ports.DocumentLocker = NopLocker{}
)

// RedisLocker bloqueo distribuido por documento (redislock).
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisLocker construye el locker. ttl es la vida máxima del bloqueo si el proceso muere.
func NewRedisLocker(client *redislock.Client, ttl time.Duration, log *logger.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, log: log.Component("locker")}
}

// Lock reintenta durante unos segundos; si el documento sigue bloqueado devuelve ConflictError.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(context.Context), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 30),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		l.log.Ctx(ctx).Warn().Str("key", key).Msg("document lock not obtained")
		return nil, domain.NewConflict("Le document est en cours de modification, réessayez plus tard")
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("document lock release failed")
		}
	}, nil
}

// NopLocker no bloquea. Sirve con una sola instancia y almacenamiento en memoria.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (func(context.Context), error) {
	return func(context.Context) {}, nil
}
