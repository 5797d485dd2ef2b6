package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
)

// SaleUseCase descuenta ventas de mostrador (facturadas sin entrega) directamente del lote.
type SaleUseCase struct {
	writer *BatchWriter
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(writer *BatchWriter) *SaleUseCase {
	return &SaleUseCase{writer: writer}
}

// SaleInput venta sobre un lote. InvoiceNumber queda en las notas del movimiento.
type SaleInput struct {
	BatchID       string
	Quantity      decimal.Decimal
	InvoiceNumber string
	CreatedBy     string
}

// Sell escribe un movimiento sale. Lo reservado para entregas no se puede vender.
func (uc *SaleUseCase) Sell(ctx context.Context, in SaleInput) (*entity.LedgerTransaction, error) {
	if in.BatchID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.LedgerTransaction
	err := uc.writer.Do(ctx, in.BatchID, func(r Repos, b *entity.Batch) error {
		if !b.IsActive {
			return domain.ErrBatchInactive
		}
		pending, err := r.Assignments.PendingQuantity(ctx, b.ID)
		if err != nil {
			return err
		}
		available := ledger.AvailableForDelivery(b.CurrentQuantity, pending)
		if available.LessThan(in.Quantity) {
			return &domain.InsufficientStockError{BatchID: b.ID, Available: available, Requested: in.Quantity}
		}
		var notes string
		if n := strings.TrimSpace(in.InvoiceNumber); n != "" {
			notes = "factura " + n
		}
		tx, err := uc.writer.Append(ctx, r, b, AppendInput{
			Type:      entity.TxSale,
			Quantity:  in.Quantity.Neg(),
			CreatedBy: in.CreatedBy,
			Notes:     notes,
		})
		if err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
