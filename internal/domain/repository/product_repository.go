package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El ledger solo toca las cachés total_stock y owner_stock.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// AddStock suma deltas a las cachés en una sola sentencia.
	AddStock(ctx context.Context, id string, totalDelta, ownerDelta decimal.Decimal) error
	SetTotalStock(ctx context.Context, id string, total decimal.Decimal) error
	// ListIDs devuelve todos los productos, incluidos los que no tienen lotes, ordenados por id.
	ListIDs(ctx context.Context) ([]string, error)
}
