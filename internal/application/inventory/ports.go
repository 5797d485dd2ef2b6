package inventory

import (
	"context"

	"github.com/jhoicas/batch-ledger/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
type Repos struct {
	Batches     repository.BatchRepository
	Ledger      repository.LedgerRepository
	Assignments repository.AssignmentRepository
	Products    repository.ProductRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// BatchLocker da exclusión mutua por lote (nunca global) durante la secuencia leer-validar-escribir.
// unlock libera el bloqueo; es seguro llamarlo una sola vez.
type BatchLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
