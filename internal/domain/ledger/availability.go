package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// AvailableForDelivery = max(0, cantidad actual − Σ solicitado en asignaciones pendientes).
func AvailableForDelivery(current, pendingRequested decimal.Decimal) decimal.Decimal {
	return decimal.Max(current.Sub(pendingRequested), decimal.Zero)
}

// PendingRequested suma lo solicitado por las asignaciones pendientes.
func PendingRequested(assignments []*entity.Assignment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assignments {
		if a.Status == entity.AssignmentPending {
			total = total.Add(a.RequestedQuantity)
		}
	}
	return total
}
