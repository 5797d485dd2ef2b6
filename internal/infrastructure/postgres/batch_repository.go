package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, product_id, batch_number, initial_quantity, current_quantity, unit_cost, is_active, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.ProductID, &b.BatchNumber, &b.InitialQuantity, &b.CurrentQuantity,
		&b.UnitCost, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, b.ID, b.ProductID, b.BatchNumber, b.InitialQuantity, b.CurrentQuantity,
		b.UnitCost, b.IsActive, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert batch: %w", mapError(err))
	}
	return nil
}

// GetByID obtiene un lote sin bloquearlo.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", id, mapError(err))
	}
	return b, nil
}

// GetForUpdate obtiene el lote y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("get batch for update %s: %w", id, mapError(err))
	}
	return b, nil
}

// GetByNumber busca el lote por (producto, número).
func (r *BatchRepo) GetByNumber(ctx context.Context, productID, batchNumber string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE product_id = $1 AND batch_number = $2`, productID, batchNumber))
	if err != nil {
		return nil, fmt.Errorf("get batch by number: %w", mapError(err))
	}
	return b, nil
}

func (r *BatchRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, mapError(errNoRows))
	}
	return nil
}

// UpdateQuantity fija current_quantity; solo se llama junto con un movimiento del ledger.
func (r *BatchRepo) UpdateQuantity(ctx context.Context, id string, current decimal.Decimal) error {
	return r.exec(ctx, "update batch quantity",
		`UPDATE batches SET current_quantity = $2, updated_at = now() WHERE id = $1`, id, current)
}

// SetActive activa o retira el lote.
func (r *BatchRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, "set batch active",
		`UPDATE batches SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
}

// UpdateUnitCost fija el costo unitario (promedio ponderado calculado por el caso de uso).
func (r *BatchRepo) UpdateUnitCost(ctx context.Context, id string, cost decimal.Decimal) error {
	return r.exec(ctx, "update batch cost",
		`UPDATE batches SET unit_cost = $2, updated_at = now() WHERE id = $1`, id, cost)
}

// ListByProduct lista los lotes del producto ordenados por id.
func (r *BatchRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, `SELECT `+batchColumns+` FROM batches WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ListIDs devuelve todos los ids de lote ordenados.
func (r *BatchRepo) ListIDs(ctx context.Context) ([]string, error) {
	return collectIDs(ctx, r.q, `SELECT id::text FROM batches ORDER BY id`)
}

func collectIDs(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan ids: %w", err)
	}
	return ids, nil
}
