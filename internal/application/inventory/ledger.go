package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
)

// AppendInput datos de un movimiento a escribir en el ledger.
type AppendInput struct {
	Type      entity.TransactionType
	Quantity  decimal.Decimal
	Reference entity.Reference
	CreatedBy string
	Notes     string
}

// BatchWriter es la unidad de trabajo de todo lo que escribe sobre un lote:
// bloqueo del lote, transacción, SELECT FOR UPDATE y mantenimiento de las cachés del producto.
type BatchWriter struct {
	txRunner TxRunner
	locker   BatchLocker
	now      func() time.Time
}

// NewBatchWriter construye la unidad de trabajo. now nil usa time.Now.
func NewBatchWriter(txRunner TxRunner, locker BatchLocker, now func() time.Time) *BatchWriter {
	if now == nil {
		now = time.Now
	}
	return &BatchWriter{txRunner: txRunner, locker: locker, now: now}
}

// Now devuelve la hora del reloj inyectado.
func (w *BatchWriter) Now() time.Time { return w.now().UTC() }

// Do bloquea el lote, abre transacción, lo relee con bloqueo de fila y ejecuta fn.
// fn debe reflejar en b los cambios que haga (cantidad, activo) para que las
// cachés del producto reciban el delta correcto.
func (w *BatchWriter) Do(ctx context.Context, batchID string, fn func(r Repos, b *entity.Batch) error) error {
	unlock, err := w.locker.Lock(ctx, batchID)
	if err != nil {
		return err
	}
	defer unlock()

	return w.txRunner.Run(ctx, func(r Repos) error {
		b, err := r.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		before, err := contribution(ctx, r, b)
		if err != nil {
			return err
		}
		if err := fn(r, b); err != nil {
			return err
		}
		after, err := contribution(ctx, r, b)
		if err != nil {
			return err
		}
		return applyCacheDelta(ctx, r, b.ProductID, before, after)
	})
}

// Append escribe un movimiento y actualiza la cantidad materializada del lote en la misma tx.
// Debe llamarse dentro de Do (o con el lote ya bloqueado).
func (w *BatchWriter) Append(ctx context.Context, r Repos, b *entity.Batch, in AppendInput) (*entity.LedgerTransaction, error) {
	if err := ledger.ValidateDelta(in.Type, in.Quantity, in.Reference); err != nil {
		return nil, err
	}
	next, err := ledger.ApplyDelta(b, in.Type, in.Quantity, in.Reference)
	if err != nil {
		return nil, err
	}
	tx := &entity.LedgerTransaction{
		ID:           newID(),
		BatchID:      b.ID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		BalanceAfter: next,
		Reference:    in.Reference,
		Notes:        in.Notes,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    w.Now(),
	}
	if err := r.Ledger.Append(ctx, tx); err != nil {
		return nil, err
	}
	if err := r.Batches.UpdateQuantity(ctx, b.ID, next); err != nil {
		return nil, err
	}
	b.CurrentQuantity = next
	b.UpdatedAt = tx.CreatedAt
	return tx, nil
}

// stockShare es lo que un lote aporta a las cachés de su producto.
type stockShare struct {
	total     decimal.Decimal
	available decimal.Decimal
}

func contribution(ctx context.Context, r Repos, b *entity.Batch) (stockShare, error) {
	if !b.IsActive {
		return stockShare{total: decimal.Zero, available: decimal.Zero}, nil
	}
	pending, err := r.Assignments.PendingQuantity(ctx, b.ID)
	if err != nil {
		return stockShare{}, err
	}
	return stockShare{
		total:     b.CurrentQuantity,
		available: ledger.AvailableForDelivery(b.CurrentQuantity, pending),
	}, nil
}

func applyCacheDelta(ctx context.Context, r Repos, productID string, before, after stockShare) error {
	dTotal := after.total.Sub(before.total)
	dOwner := after.available.Sub(before.available)
	if dTotal.IsZero() && dOwner.IsZero() {
		return nil
	}
	if err := r.Products.AddStock(ctx, productID, dTotal, dOwner); err != nil {
		return fmt.Errorf("actualizar cachés de producto %s: %w", productID, err)
	}
	return nil
}

// newID genera un UUIDv7: ordenado por tiempo, de modo que el desempate por id sigue el orden de escritura.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
