package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// AssignmentRepository define el puerto de asignaciones de lotes a entregas.
type AssignmentRepository interface {
	Create(ctx context.Context, a *entity.Assignment) error
	GetByID(ctx context.Context, id string) (*entity.Assignment, error)
	Update(ctx context.Context, a *entity.Assignment) error
	ListByBatch(ctx context.Context, batchID string) ([]*entity.Assignment, error)
	// PendingQuantity suma requested_quantity de las asignaciones pendientes del lote.
	PendingQuantity(ctx context.Context, batchID string) (decimal.Decimal, error)
}
