package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote de stock de un producto con cantidad y costo propios.
// InitialQuantity se fija al crear el lote; CurrentQuantity es el valor materializado
// del ledger y solo cambia junto con un movimiento (misma transacción).
type Batch struct {
	ID              string
	ProductID       string
	BatchNumber     string // único por producto
	InitialQuantity decimal.Decimal
	CurrentQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsExhausted indica si el lote ya no tiene existencias.
func (b *Batch) IsExhausted() bool {
	return !b.CurrentQuantity.IsPositive()
}
