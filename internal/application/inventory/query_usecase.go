package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
	"github.com/jhoicas/batch-ledger/internal/domain/repository"
)

// QueryUseCase expone la API de lectura del ledger.
type QueryUseCase struct {
	txRunner TxRunner
	locker   BatchLocker
	batches  repository.BatchRepository
	products repository.ProductRepository
	ledger   repository.LedgerRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	txRunner TxRunner,
	locker BatchLocker,
	batches repository.BatchRepository,
	products repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
) *QueryUseCase {
	return &QueryUseCase{
		txRunner: txRunner,
		locker:   locker,
		batches:  batches,
		products: products,
		ledger:   ledgerRepo,
	}
}

// GetCurrentQuantity devuelve la cantidad materializada del lote.
func (uc *QueryUseCase) GetCurrentQuantity(ctx context.Context, batchID string) (decimal.Decimal, error) {
	if batchID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	b, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.CurrentQuantity, nil
}

// GetAvailableForDelivery calcula max(0, actual − pendiente) con el lote bloqueado,
// igual que la reserva, para no ver un valor intermedio.
func (uc *QueryUseCase) GetAvailableForDelivery(ctx context.Context, batchID string) (decimal.Decimal, error) {
	if batchID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	unlock, err := uc.locker.Lock(ctx, batchID)
	if err != nil {
		return decimal.Zero, err
	}
	defer unlock()

	available := decimal.Zero
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		b, err := r.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		pending, err := r.Assignments.PendingQuantity(ctx, b.ID)
		if err != nil {
			return err
		}
		available = ledger.AvailableForDelivery(b.CurrentQuantity, pending)
		return nil
	})
	return available, err
}

// GetProductTotalStock suma la cantidad actual de los lotes activos del producto.
func (uc *QueryUseCase) GetProductTotalStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	if productID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	if _, err := uc.products.GetByID(ctx, productID); err != nil {
		return decimal.Zero, err
	}
	batches, err := uc.batches.ListByProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return SumActive(batches), nil
}

// GetLedger devuelve el historial del lote en orden de replay.
func (uc *QueryUseCase) GetLedger(ctx context.Context, batchID string) ([]*entity.LedgerTransaction, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.batches.GetByID(ctx, batchID); err != nil {
		return nil, err
	}
	return uc.ledger.Replay(ctx, batchID)
}

// SumActive suma current_quantity de los lotes activos.
func SumActive(batches []*entity.Batch) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batches {
		if b.IsActive {
			total = total.Add(b.CurrentQuantity)
		}
	}
	return total
}
