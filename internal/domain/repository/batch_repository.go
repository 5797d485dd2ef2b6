package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia de lotes.
// Dentro de una transacción, GetForUpdate bloquea la fila (SELECT FOR UPDATE).
type BatchRepository interface {
	Create(ctx context.Context, b *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	GetByNumber(ctx context.Context, productID, batchNumber string) (*entity.Batch, error)
	UpdateQuantity(ctx context.Context, id string, current decimal.Decimal) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateUnitCost(ctx context.Context, id string, cost decimal.Decimal) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error)
	// ListIDs devuelve todos los lotes ordenados por id.
	ListIDs(ctx context.Context) ([]string, error)
}
