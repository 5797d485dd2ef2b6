package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
)

// RestockUseCase crea lotes, los reabastece y los retira.
type RestockUseCase struct {
	writer *BatchWriter
}

// NewRestockUseCase construye el caso de uso.
func NewRestockUseCase(writer *BatchWriter) *RestockUseCase {
	return &RestockUseCase{writer: writer}
}

// NewBatchSpec datos de un lote nuevo.
type NewBatchSpec struct {
	ProductID   string
	BatchNumber string
	UnitCost    decimal.Decimal
}

// RestockInput reabastece un lote existente (BatchID) o crea uno (NewBatch).
// UnitCost, si viene, se promedia con el costo del lote existente.
type RestockInput struct {
	BatchID   string
	NewBatch  *NewBatchSpec
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	CreatedBy string
	Notes     string
}

// Restock ingresa mercancía. Un lote nuevo fija initial_quantity y escribe el primer restock.
func (uc *RestockUseCase) Restock(ctx context.Context, in RestockInput) (*entity.Batch, error) {
	if !in.Quantity.IsPositive() || (in.BatchID == "") == (in.NewBatch == nil) {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.NewBatch != nil {
		return uc.create(ctx, in)
	}

	var out *entity.Batch
	err := uc.writer.Do(ctx, in.BatchID, func(r Repos, b *entity.Batch) error {
		if !b.IsActive {
			if err := r.Batches.SetActive(ctx, b.ID, true); err != nil {
				return err
			}
			b.IsActive = true
		}
		if in.UnitCost != nil {
			cost := ledger.WeightedUnitCost(b.CurrentQuantity, b.UnitCost, in.Quantity, *in.UnitCost)
			if err := r.Batches.UpdateUnitCost(ctx, b.ID, cost); err != nil {
				return err
			}
			b.UnitCost = cost
		}
		if _, err := uc.writer.Append(ctx, r, b, AppendInput{
			Type:      entity.TxRestock,
			Quantity:  in.Quantity,
			CreatedBy: in.CreatedBy,
			Notes:     in.Notes,
		}); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *RestockUseCase) create(ctx context.Context, in RestockInput) (*entity.Batch, error) {
	spec := in.NewBatch
	spec.BatchNumber = strings.TrimSpace(spec.BatchNumber)
	if spec.ProductID == "" || spec.BatchNumber == "" || spec.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	// El lote aún no existe: se serializa por (producto, número de lote).
	unlock, err := uc.writer.locker.Lock(ctx, "new:"+spec.ProductID+":"+spec.BatchNumber)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.writer.Now()
	b := &entity.Batch{
		ID:              newID(),
		ProductID:       spec.ProductID,
		BatchNumber:     spec.BatchNumber,
		InitialQuantity: in.Quantity,
		CurrentQuantity: decimal.Zero,
		UnitCost:        spec.UnitCost,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = uc.writer.txRunner.Run(ctx, func(r Repos) error {
		if _, err := r.Products.GetByID(ctx, spec.ProductID); err != nil {
			return err
		}
		existing, err := r.Batches.GetByNumber(ctx, spec.ProductID, spec.BatchNumber)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := r.Batches.Create(ctx, b); err != nil {
			return err
		}
		if _, err := uc.writer.Append(ctx, r, b, AppendInput{
			Type:      entity.TxRestock,
			Quantity:  in.Quantity,
			CreatedBy: in.CreatedBy,
			Notes:     in.Notes,
		}); err != nil {
			return err
		}
		// Lote nuevo sin asignaciones: todo lo ingresado queda disponible.
		return applyCacheDelta(ctx, r, b.ProductID,
			stockShare{total: decimal.Zero, available: decimal.Zero},
			stockShare{total: b.CurrentQuantity, available: b.CurrentQuantity})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Deactivate retira un lote (agotado o retirado). Nunca se borra; con asignaciones
// pendientes devuelve ErrConflict.
func (uc *RestockUseCase) Deactivate(ctx context.Context, batchID string) (*entity.Batch, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Batch
	err := uc.writer.Do(ctx, batchID, func(r Repos, b *entity.Batch) error {
		out = b
		if !b.IsActive {
			return nil
		}
		pending, err := r.Assignments.PendingQuantity(ctx, b.ID)
		if err != nil {
			return err
		}
		if pending.IsPositive() {
			return domain.ErrConflict
		}
		if err := r.Batches.SetActive(ctx, b.ID, false); err != nil {
			return err
		}
		b.IsActive = false
		b.UpdatedAt = uc.writer.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
