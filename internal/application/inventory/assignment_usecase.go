package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
	"github.com/jhoicas/batch-ledger/internal/domain/repository"
)

// AssignmentUseCase gestiona el ciclo de vida de las asignaciones:
// pending → delivered | partial → returned.
type AssignmentUseCase struct {
	writer      *BatchWriter
	assignments repository.AssignmentRepository
}

// NewAssignmentUseCase construye el caso de uso. assignments se usa solo para
// resolver el lote de una asignación antes de tomar su bloqueo.
func NewAssignmentUseCase(writer *BatchWriter, assignments repository.AssignmentRepository) *AssignmentUseCase {
	return &AssignmentUseCase{writer: writer, assignments: assignments}
}

// ReserveInput datos para reservar stock de un lote para una línea de entrega.
type ReserveInput struct {
	BatchID        string
	DeliveryItemID entity.DeliveryItemID
	DeliveryID     *entity.DeliveryID
	SalesmanID     string
	Quantity       decimal.Decimal
	CreatedBy      string
}

// Reserve es el único camino que escribe movimientos de tipo assignment.
// Con disponible insuficiente devuelve *domain.InsufficientStockError y el lote queda intacto.
func (uc *AssignmentUseCase) Reserve(ctx context.Context, in ReserveInput) (*entity.Assignment, error) {
	if in.BatchID == "" || in.DeliveryItemID == "" || in.SalesmanID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Assignment
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

		a := &entity.Assignment{
			ID:                newID(),
			BatchID:           b.ID,
			DeliveryID:        in.DeliveryID,
			DeliveryItemID:    in.DeliveryItemID,
			SalesmanID:        in.SalesmanID,
			RequestedQuantity: in.Quantity,
			DeliveredQuantity: decimal.Zero,
			ReturnedQuantity:  decimal.Zero,
			Status:            entity.AssignmentPending,
		}
		if _, err := uc.writer.Append(ctx, r, b, AppendInput{
			Type:      entity.TxAssignment,
			Quantity:  in.Quantity.Neg(),
			Reference: a.Reference(),
			CreatedBy: in.CreatedBy,
		}); err != nil {
			return err
		}
		a.CreatedAt = b.UpdatedAt
		a.UpdatedAt = b.UpdatedAt
		if err := r.Assignments.Create(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Fulfill confirma la entrega. Si se entregó menos de lo reservado, la diferencia vuelve
// al lote con un ajuste referenciado a la misma línea de entrega.
func (uc *AssignmentUseCase) Fulfill(ctx context.Context, assignmentID string, delivered decimal.Decimal, createdBy string) (*entity.Assignment, error) {
	if delivered.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	return uc.onAssignment(ctx, assignmentID, func(r Repos, b *entity.Batch, a *entity.Assignment) error {
		if a.Status != entity.AssignmentPending {
			return domain.ErrInvalidTransition
		}
		if delivered.GreaterThan(a.RequestedQuantity) {
			return domain.ErrInvalidInput
		}
		if diff := a.RequestedQuantity.Sub(delivered); diff.IsPositive() {
			if _, err := uc.writer.Append(ctx, r, b, AppendInput{
				Type:      entity.TxAdjustment,
				Quantity:  diff,
				Reference: a.Reference(),
				CreatedBy: createdBy,
				Notes:     "entrega parcial",
			}); err != nil {
				return err
			}
			a.Status = entity.AssignmentPartial
		} else {
			a.Status = entity.AssignmentDelivered
		}
		a.DeliveredQuantity = delivered
		return nil
	})
}

// ReturnStock registra una devolución sobre una asignación entregada. No cambia el estado.
func (uc *AssignmentUseCase) ReturnStock(ctx context.Context, assignmentID string, returned decimal.Decimal, createdBy string) (*entity.Assignment, error) {
	if !returned.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	return uc.onAssignment(ctx, assignmentID, func(r Repos, b *entity.Batch, a *entity.Assignment) error {
		if !a.CanReturn() {
			return domain.ErrInvalidTransition
		}
		if a.ReturnedQuantity.Add(returned).GreaterThan(a.DeliveredQuantity) {
			return domain.ErrInvalidInput
		}
		if _, err := uc.writer.Append(ctx, r, b, AppendInput{
			Type:      entity.TxReturn,
			Quantity:  returned,
			Reference: a.Reference(),
			CreatedBy: createdBy,
		}); err != nil {
			return err
		}
		a.ReturnedQuantity = a.ReturnedQuantity.Add(returned)
		return nil
	})
}

// MarkReturned cierra la asignación cuando no se esperan más devoluciones.
func (uc *AssignmentUseCase) MarkReturned(ctx context.Context, assignmentID string) (*entity.Assignment, error) {
	return uc.onAssignment(ctx, assignmentID, func(_ Repos, _ *entity.Batch, a *entity.Assignment) error {
		if !a.CanReturn() {
			return domain.ErrInvalidTransition
		}
		a.Status = entity.AssignmentReturned
		return nil
	})
}

// onAssignment resuelve el lote de la asignación, toma su bloqueo y relee la asignación dentro de la tx.
func (uc *AssignmentUseCase) onAssignment(ctx context.Context, assignmentID string, fn func(r Repos, b *entity.Batch, a *entity.Assignment) error) (*entity.Assignment, error) {
	if assignmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	found, err := uc.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	var out *entity.Assignment
	err = uc.writer.Do(ctx, found.BatchID, func(r Repos, b *entity.Batch) error {
		a, err := r.Assignments.GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if err := fn(r, b, a); err != nil {
			return err
		}
		a.UpdatedAt = uc.writer.Now()
		if err := r.Assignments.Update(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
