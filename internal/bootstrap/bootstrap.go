// Package bootstrap arma las dependencias compartidas por cmd/api y cmd/reconcile.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/batch-ledger/internal/application/inventory"
	"github.com/jhoicas/batch-ledger/internal/application/reconciliation"
	"github.com/jhoicas/batch-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/batch-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/batch-ledger/internal/infrastructure/redislock"
	"github.com/jhoicas/batch-ledger/pkg/config"
	"github.com/jhoicas/batch-ledger/pkg/logger"
)

// Components casos de uso listos para usar.
type Components struct {
	Query       *inventory.QueryUseCase
	Restock     *inventory.RestockUseCase
	Assignments *inventory.AssignmentUseCase
	Sales       *inventory.SaleUseCase
	Engine      *reconciliation.Engine

	pool *pgxpool.Pool
	rdb  *redis.Client
}

// Close libera pool y cliente Redis.
func (c *Components) Close() {
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
}

// Build conecta PostgreSQL, aplica migraciones y elige el bloqueo por lote:
// Redis si REDIS_ADDR está definido, si no un bloqueo en memoria (una sola réplica).
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Components, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	c := &Components{pool: pool}

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("migraciones: %w", err)
	}
	for _, name := range applied {
		log.Info().Str("migration", name).Msg("migración aplicada")
	}

	var locker inventory.BatchLocker
	if cfg.Redis.Enabled() {
		rdb, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.rdb = rdb
		locker = redislock.New(rdb, cfg.Redis.LockTTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo por lote en Redis")
	} else {
		locker = memory.NewLocker()
		log.Warn().Msg("REDIS_ADDR vacío: bloqueo por lote en memoria, no usar con varias réplicas")
	}

	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.NewRepos(pool)
	writer := inventory.NewBatchWriter(txRunner, locker, nil)

	engine, err := reconciliation.NewEngine(writer, txRunner, repos, reconciliation.Config{
		Window:      cfg.Reconciliation.Window,
		Tolerance:   cfg.Reconciliation.Tolerance,
		Workers:     cfg.Reconciliation.Workers,
		SystemActor: cfg.Reconciliation.SystemActor,
	}, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RECONCILE_SYSTEM_ACTOR: %w", err)
	}

	c.Query = inventory.NewQueryUseCase(txRunner, locker, repos.Batches, repos.Products, repos.Ledger)
	c.Restock = inventory.NewRestockUseCase(writer)
	c.Assignments = inventory.NewAssignmentUseCase(writer, repos.Assignments)
	c.Sales = inventory.NewSaleUseCase(writer)
	c.Engine = engine
	return c, nil
}
