package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// Tolerance es la diferencia máxima aceptada entre cantidad materializada y replay.
var Tolerance = decimal.New(1, -2) // 0.01

// ValidateDelta verifica tipo, signo y referencia de un movimiento antes de escribirlo.
// assignment y sale siempre descuentan; assignment solo se escribe contra una línea de entrega.
func ValidateDelta(t entity.TransactionType, qty decimal.Decimal, ref entity.Reference) error {
	if !t.Valid() || qty.IsZero() {
		return domain.ErrInvalidInput
	}
	switch t {
	case entity.TxAssignment:
		if !qty.IsNegative() {
			return domain.ErrInvalidInput
		}
		if _, ok := entity.AsDeliveryItem(ref); !ok {
			return domain.ErrInvalidInput
		}
	case entity.TxSale:
		if !qty.IsNegative() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// IsReconciliationAdjustment indica si el movimiento es una corrección escrita por
// conciliación (actual o scripts heredados). No cuenta en el replay.
func IsReconciliationAdjustment(tx *entity.LedgerTransaction) bool {
	if tx.Type != entity.TxAdjustment {
		return false
	}
	switch entity.KindOf(tx.Reference) {
	case entity.RefStockReconciliation, entity.RefSystemCorrection:
		return true
	}
	return false
}

// ApplyDelta calcula el saldo resultante. Un saldo negativo es stock insuficiente,
// salvo en ajustes de conciliación, donde indica una discrepancia no resoluble.
func ApplyDelta(batch *entity.Batch, t entity.TransactionType, qty decimal.Decimal, ref entity.Reference) (decimal.Decimal, error) {
	next := batch.CurrentQuantity.Add(qty)
	if !next.IsNegative() {
		return next, nil
	}
	if t == entity.TxAdjustment && entity.KindOf(ref) == entity.RefStockReconciliation {
		return batch.CurrentQuantity, domain.ErrUnresolvableDiscrepancy
	}
	return batch.CurrentQuantity, &domain.InsufficientStockError{
		BatchID:   batch.ID,
		Available: batch.CurrentQuantity,
		Requested: qty.Neg(),
	}
}
