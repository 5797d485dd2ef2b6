package repository

import (
	"context"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// LedgerRepository define el puerto del ledger append-only.
type LedgerRepository interface {
	// Append inserta el movimiento. Una segunda asignación para la misma
	// (lote, variante, id de referencia) devuelve domain.ErrDuplicateLedgerEntry.
	Append(ctx context.Context, tx *entity.LedgerTransaction) error
	// Replay devuelve el historial del lote en orden (created_at, id) ascendente.
	Replay(ctx context.Context, batchID string) ([]*entity.LedgerTransaction, error)
	// DeleteByIDs borra filas duplicadas; solo lo usa la conciliación.
	DeleteByIDs(ctx context.Context, batchID string, ids []string) (int64, error)
}
