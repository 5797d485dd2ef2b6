package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del ledger append-only sobre la tabla batch_ledger.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta el movimiento. El índice parcial uq_batch_ledger_assignment_ref rechaza la
// segunda asignación con la misma referencia (ErrDuplicateLedgerEntry).
func (r *LedgerRepo) Append(ctx context.Context, t *entity.LedgerTransaction) error {
	query := `
		INSERT INTO batch_ledger (id, batch_id, type, quantity, balance_after, reference_kind, reference_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	var refID string
	if t.Reference != nil {
		refID = t.Reference.RawID()
	}
	_, err := r.q.Exec(ctx, query,
		t.ID, t.BatchID, string(t.Type), t.Quantity, t.BalanceAfter,
		string(entity.KindOf(t.Reference)), refID, t.Notes, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger: %w", mapError(err))
	}
	return nil
}

// Replay devuelve el historial del lote en orden (created_at, id).
func (r *LedgerRepo) Replay(ctx context.Context, batchID string) ([]*entity.LedgerTransaction, error) {
	query := `
		SELECT id, batch_id, type, quantity, balance_after, reference_kind, reference_id, notes, created_by, created_at
		FROM batch_ledger
		WHERE batch_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("replay ledger: %w", err)
	}
	defer rows.Close()

	var list []*entity.LedgerTransaction
	for rows.Next() {
		t, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanLedger(row pgx.Row) (*entity.LedgerTransaction, error) {
	var (
		t           entity.LedgerTransaction
		typ         string
		kind, rawID string
	)
	if err := row.Scan(&t.ID, &t.BatchID, &typ, &t.Quantity, &t.BalanceAfter,
		&kind, &rawID, &t.Notes, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	t.Type = entity.TransactionType(typ)
	ref, err := entity.ParseReference(kind, rawID)
	if err != nil {
		return nil, fmt.Errorf("ledger %s: %w", t.ID, err)
	}
	t.Reference = ref
	return &t, nil
}

// DeleteByIDs borra filas del lote indicado; ids de otro lote se ignoran.
func (r *LedgerRepo) DeleteByIDs(ctx context.Context, batchID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM batch_ledger WHERE batch_id = $1 AND id = ANY($2::uuid[])`, batchID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete ledger rows: %w", mapError(err))
	}
	return tag.RowsAffected(), nil
}
