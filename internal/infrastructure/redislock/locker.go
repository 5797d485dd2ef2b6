// Package redislock implementa el bloqueo por lote sobre Redis, para que varias réplicas
// de la API y el job de conciliación se excluyan entre sí.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	bsmlock "github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/batch-ledger/internal/application/inventory"
	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/pkg/config"
	"github.com/jhoicas/batch-ledger/pkg/logger"
)

var _ inventory.BatchLocker = (*Locker)(nil)

const keyPrefix = "batch-ledger:lock:"

// Locker bloqueo distribuido por clave.
type Locker struct {
	client *bsmlock.Client
	ttl    time.Duration
	retry  time.Duration
	log    *logger.Logger
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// New construye el locker. ttl es la vida máxima del bloqueo si el poseedor muere.
func New(rdb redis.UniversalClient, ttl time.Duration, log *logger.Logger) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Locker{
		client: bsmlock.New(rdb),
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		log:    log,
	}
}

// Lock espera el bloqueo de la clave con reintentos lineales. Sin deadline en ctx
// se espera como máximo ttl; al agotarse devuelve domain.ErrLockNotObtained.
// Una cancelación explícita de ctx se devuelve tal cual.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, keyPrefix+key, l.ttl, &bsmlock.Options{
		RetryStrategy: bsmlock.LinearBackoff(l.retry),
	})
	// con reintentos, redislock abandona con ctx.Err() y no con ErrNotObtained
	if errors.Is(err, bsmlock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("lote %s: %w", key, domain.ErrLockNotObtained)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener bloqueo %s: %w", key, err)
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, bsmlock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el bloqueo")
		}
	}, nil
}
