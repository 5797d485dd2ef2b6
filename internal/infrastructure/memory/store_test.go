package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/batch-ledger/internal/application/inventory"
	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/infrastructure/memory"
)

func TestStore_RollbackRestauraEstado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.SeedBatch(entity.Batch{ID: "B", ProductID: "P", CurrentQuantity: decimal.NewFromInt(10), IsActive: true})

	boom := errors.New("boom")
	err := s.Run(ctx, func(r inventory.Repos) error {
		require.NoError(t, r.Batches.UpdateQuantity(ctx, "B", decimal.NewFromInt(3)))
		require.NoError(t, r.Ledger.Append(ctx, &entity.LedgerTransaction{ID: "x", BatchID: "B", Type: entity.TxSale, Quantity: decimal.NewFromInt(-7)}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := s.Repos().Batches.GetByID(ctx, "B")
	require.NoError(t, err)
	assert.True(t, b.CurrentQuantity.Equal(decimal.NewFromInt(10)))
	rows, err := s.Repos().Ledger.Replay(ctx, "B")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_AsignacionDuplicadaPorReferencia(t *testing.T) {
	ctx := context.Background()
	r := memory.NewStore().Repos()
	ref := entity.DeliveryItemRef{ID: "item-1"}
	first := &entity.LedgerTransaction{ID: "1", BatchID: "B", Type: entity.TxAssignment, Quantity: decimal.NewFromInt(-1), Reference: ref}
	second := &entity.LedgerTransaction{ID: "2", BatchID: "B", Type: entity.TxAssignment, Quantity: decimal.NewFromInt(-1), Reference: ref}
	require.NoError(t, r.Ledger.Append(ctx, first))
	assert.ErrorIs(t, r.Ledger.Append(ctx, second), domain.ErrDuplicateLedgerEntry)

	// Otros tipos pueden repetir la referencia (ajuste por entrega parcial, devoluciones).
	ret := &entity.LedgerTransaction{ID: "3", BatchID: "B", Type: entity.TxReturn, Quantity: decimal.NewFromInt(1), Reference: ref}
	assert.NoError(t, r.Ledger.Append(ctx, ret))
	// Misma línea en otro lote tampoco choca.
	other := &entity.LedgerTransaction{ID: "4", BatchID: "C", Type: entity.TxAssignment, Quantity: decimal.NewFromInt(-1), Reference: ref}
	assert.NoError(t, r.Ledger.Append(ctx, other))
}

func TestStore_ReplayOrdenadoYBorrado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SeedLedger(
		entity.LedgerTransaction{ID: "b", BatchID: "B", Type: entity.TxSale, Quantity: decimal.NewFromInt(-1), CreatedAt: t0},
		entity.LedgerTransaction{ID: "a", BatchID: "B", Type: entity.TxSale, Quantity: decimal.NewFromInt(-1), CreatedAt: t0},
		entity.LedgerTransaction{ID: "c", BatchID: "B", Type: entity.TxSale, Quantity: decimal.NewFromInt(-1), CreatedAt: t0.Add(-time.Second)},
	)
	rows, err := s.Repos().Ledger.Replay(ctx, "B")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})

	n, err := s.Repos().Ledger.DeleteByIDs(ctx, "B", []string{"a", "zz"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	rows, _ = s.Repos().Ledger.Replay(ctx, "B")
	assert.Len(t, rows, 2)
}
