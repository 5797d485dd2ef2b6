package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
	"github.com/jhoicas/batch-ledger/pkg/config"
)

// Estas pruebas necesitan un PostgreSQL real; sin TEST_DATABASE_URL se omiten.

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func newID() string { return uuid.Must(uuid.NewV7()).String() }

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// seedBatch crea un producto con un lote de 100 y borra todo al terminar.
func seedBatch(t *testing.T, pool *pgxpool.Pool) (productID, batchID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	productID, batchID = newID(), newID()

	require.NoError(t, NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: productID, SKU: "SKU-" + productID[:8], Name: "prueba", UpdatedAt: now,
	}))
	require.NoError(t, NewBatchRepository(pool).Create(ctx, &entity.Batch{
		ID: batchID, ProductID: productID, BatchNumber: "L-" + batchID[:8],
		InitialQuantity: d(100), CurrentQuantity: d(100), UnitCost: d(10),
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM batch_ledger WHERE batch_id = $1`, batchID)
		_, _ = pool.Exec(ctx, `DELETE FROM batches WHERE id = $1`, batchID)
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	})
	return productID, batchID
}

func ledgerRow(batchID string, typ entity.TransactionType, qty int64, ref entity.Reference, at time.Time) *entity.LedgerTransaction {
	return &entity.LedgerTransaction{
		ID: newID(), BatchID: batchID, Type: typ, Quantity: d(qty),
		BalanceAfter: d(100), Reference: ref, CreatedBy: "u1", CreatedAt: at,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerRepo_ReplayOrdenaPorFechaLuegoID(t *testing.T) {
	pool := newTestPool(t)
	_, batchID := seedBatch(t, pool)
	repo := NewLedgerRepository(pool)
	ctx := context.Background()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := []*entity.LedgerTransaction{
		ledgerRow(batchID, entity.TxSale, -1, nil, at.Add(time.Minute)),
		ledgerRow(batchID, entity.TxSale, -2, nil, at),
		ledgerRow(batchID, entity.TxSale, -3, nil, at),
		ledgerRow(batchID, entity.TxRestock, 100, nil, at.Add(-time.Minute)),
	}
	for _, row := range rows {
		require.NoError(t, repo.Append(ctx, row))
	}

	want := make([]*entity.LedgerTransaction, len(rows))
	copy(want, rows)
	ledger.SortReplay(want)

	got, err := repo.Replay(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID, "posición %d", i)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt))
	}
}

func TestLedgerRepo_ReferenciaSeConservaEnElReplay(t *testing.T) {
	pool := newTestPool(t)
	_, batchID := seedBatch(t, pool)
	repo := NewLedgerRepository(pool)
	ctx := context.Background()

	row := ledgerRow(batchID, entity.TxAssignment, -5, entity.DeliveryItemRef{ID: "item-1"}, time.Now().UTC())
	require.NoError(t, repo.Append(ctx, row))

	got, err := repo.Replay(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entity.DeliveryItemRef{ID: "item-1"}, got[0].Reference)
	assert.True(t, got[0].Quantity.Equal(d(-5)))
}

func TestLedgerRepo_AsignacionDuplicadaRechazadaPorIndiceParcial(t *testing.T) {
	pool := newTestPool(t)
	_, batchID := seedBatch(t, pool)
	repo := NewLedgerRepository(pool)
	ctx := context.Background()
	ref := entity.DeliveryItemRef{ID: "item-7"}
	now := time.Now().UTC()

	require.NoError(t, repo.Append(ctx, ledgerRow(batchID, entity.TxAssignment, -10, ref, now)))
	err := repo.Append(ctx, ledgerRow(batchID, entity.TxAssignment, -10, ref, now.Add(time.Second)))
	assert.ErrorIs(t, err, domain.ErrDuplicateLedgerEntry)

	// devoluciones y ajustes reutilizan la referencia de la línea
	assert.NoError(t, repo.Append(ctx, ledgerRow(batchID, entity.TxReturn, 4, ref, now.Add(2*time.Second))))
	assert.NoError(t, repo.Append(ctx, ledgerRow(batchID, entity.TxAdjustment, 2, ref, now.Add(3*time.Second))))
}

func TestLedgerRepo_DeleteByIDsSoloDelLoteIndicado(t *testing.T) {
	pool := newTestPool(t)
	_, batchA := seedBatch(t, pool)
	_, batchB := seedBatch(t, pool)
	repo := NewLedgerRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	a1 := ledgerRow(batchA, entity.TxSale, -1, nil, now)
	a2 := ledgerRow(batchA, entity.TxSale, -2, nil, now.Add(time.Second))
	a3 := ledgerRow(batchA, entity.TxSale, -3, nil, now.Add(2*time.Second))
	b1 := ledgerRow(batchB, entity.TxSale, -1, nil, now)
	for _, row := range []*entity.LedgerTransaction{a1, a2, a3, b1} {
		require.NoError(t, repo.Append(ctx, row))
	}

	n, err := repo.DeleteByIDs(ctx, batchA, []string{a1.ID, a3.ID, b1.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "la fila del otro lote no se toca")

	left, err := repo.Replay(ctx, batchA)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, a2.ID, left[0].ID)

	other, err := repo.Replay(ctx, batchB)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestProductRepo_ListIDsIncluyeProductosSinLotes(t *testing.T) {
	pool := newTestPool(t)
	withBatch, _ := seedBatch(t, pool)
	ctx := context.Background()

	lonely := newID()
	require.NoError(t, NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: lonely, SKU: "SKU-" + lonely[:8], Name: "sin lotes", TotalStock: d(55), UpdatedAt: time.Now().UTC(),
	}))
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, lonely) })

	ids, err := NewProductRepository(pool).ListIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, withBatch)
	assert.Contains(t, ids, lonely)
}

func TestBatchRepo_UpdateQuantityLoteInexistente(t *testing.T) {
	pool := newTestPool(t)
	err := NewBatchRepository(pool).UpdateQuantity(context.Background(), newID(), d(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
