package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es la raíz agregada del catálogo que consume el ledger de lotes.
// TotalStock y OwnerStock son cachés derivadas de los lotes; nunca son la fuente de verdad.
type Product struct {
	ID         string
	CompanyID  string
	SKU        string
	Name       string
	TotalStock decimal.Decimal // Σ cantidad actual de lotes activos
	OwnerStock decimal.Decimal // Σ disponible para entrega (no asignado)
	UpdatedAt  time.Time
}
