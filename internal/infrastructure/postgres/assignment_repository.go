package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/repository"
)

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

// AssignmentRepo implementación de AssignmentRepository sobre batch_assignments.
type AssignmentRepo struct {
	q Querier
}

// NewAssignmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{q: q}
}

const assignmentColumns = `id, batch_id, delivery_id, delivery_item_id, salesman_id,
	requested_quantity, delivered_quantity, returned_quantity, status, created_at, updated_at`

func scanAssignment(row pgx.Row) (*entity.Assignment, error) {
	var (
		a          entity.Assignment
		deliveryID *string
		itemID     string
		status     string
	)
	err := row.Scan(&a.ID, &a.BatchID, &deliveryID, &itemID, &a.SalesmanID,
		&a.RequestedQuantity, &a.DeliveredQuantity, &a.ReturnedQuantity, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if deliveryID != nil {
		d := entity.DeliveryID(*deliveryID)
		a.DeliveryID = &d
	}
	a.DeliveryItemID = entity.DeliveryItemID(itemID)
	a.Status = entity.AssignmentStatus(status)
	return &a, nil
}

func deliveryIDArg(a *entity.Assignment) *string {
	if a.DeliveryID == nil {
		return nil
	}
	s := string(*a.DeliveryID)
	return &s
}

// Create persiste una asignación nueva.
func (r *AssignmentRepo) Create(ctx context.Context, a *entity.Assignment) error {
	query := `
		INSERT INTO batch_assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.BatchID, deliveryIDArg(a), string(a.DeliveryItemID), a.SalesmanID,
		a.RequestedQuantity, a.DeliveredQuantity, a.ReturnedQuantity, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", mapError(err))
	}
	return nil
}

// GetByID obtiene una asignación por ID.
func (r *AssignmentRepo) GetByID(ctx context.Context, id string) (*entity.Assignment, error) {
	a, err := scanAssignment(r.q.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM batch_assignments WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get assignment %s: %w", id, mapError(err))
	}
	return a, nil
}

// Update guarda cantidades y estado.
func (r *AssignmentRepo) Update(ctx context.Context, a *entity.Assignment) error {
	query := `
		UPDATE batch_assignments
		SET delivered_quantity = $2, returned_quantity = $3, status = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, a.ID, a.DeliveredQuantity, a.ReturnedQuantity, string(a.Status), a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update assignment: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update assignment %s: %w", a.ID, mapError(errNoRows))
	}
	return nil
}

// ListByBatch lista las asignaciones del lote en orden de creación.
func (r *AssignmentRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.Assignment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+assignmentColumns+` FROM batch_assignments WHERE batch_id = $1 ORDER BY created_at, id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// PendingQuantity suma lo solicitado por las asignaciones pendientes del lote.
func (r *AssignmentRepo) PendingQuantity(ctx context.Context, batchID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(requested_quantity), 0) FROM batch_assignments WHERE batch_id = $1 AND status = 'pending'`,
		batchID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pending quantity: %w", err)
	}
	return total, nil
}
