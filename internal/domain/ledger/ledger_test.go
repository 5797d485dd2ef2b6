package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func tx(id string, typ entity.TransactionType, qty int64, ref entity.Reference, at time.Duration) *entity.LedgerTransaction {
	return &entity.LedgerTransaction{
		ID:        id,
		BatchID:   "B",
		Type:      typ,
		Quantity:  d(qty),
		Reference: ref,
		CreatedAt: t0.Add(at),
	}
}

func item(id string) entity.Reference     { return entity.DeliveryItemRef{ID: entity.DeliveryItemID(id)} }
func delivery(id string) entity.Reference { return entity.DeliveryRef{ID: entity.DeliveryID(id)} }

func ids(txs []*entity.LedgerTransaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas de signo
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateDelta_AsignacionDebeSerNegativaYConLinea(t *testing.T) {
	assert.NoError(t, ledger.ValidateDelta(entity.TxAssignment, d(-5), item("i1")))
	assert.ErrorIs(t, ledger.ValidateDelta(entity.TxAssignment, d(5), item("i1")), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.ValidateDelta(entity.TxAssignment, d(-5), delivery("e1")), domain.ErrInvalidInput,
		"solo la línea de entrega es camino canónico de asignación")
	assert.ErrorIs(t, ledger.ValidateDelta(entity.TxAssignment, d(-5), nil), domain.ErrInvalidInput)
}

func TestValidateDelta_VentaNegativaYCeroRechazado(t *testing.T) {
	assert.NoError(t, ledger.ValidateDelta(entity.TxSale, d(-1), nil))
	assert.ErrorIs(t, ledger.ValidateDelta(entity.TxSale, d(1), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.ValidateDelta(entity.TxRestock, decimal.Zero, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.ValidateDelta("transfer", d(1), nil), domain.ErrInvalidInput)
}

func TestValidateDelta_AjusteDevolucionYRestockCualquierSigno(t *testing.T) {
	for _, typ := range []entity.TransactionType{entity.TxRestock, entity.TxReturn, entity.TxAdjustment} {
		assert.NoError(t, ledger.ValidateDelta(typ, d(3), nil), typ)
		assert.NoError(t, ledger.ValidateDelta(typ, d(-3), nil), typ)
	}
}

func TestApplyDelta_SaldoNegativoEsStockInsuficiente(t *testing.T) {
	b := &entity.Batch{ID: "B", CurrentQuantity: d(10)}

	next, err := ledger.ApplyDelta(b, entity.TxSale, d(-4), nil)
	require.NoError(t, err)
	assert.True(t, next.Equal(d(6)))

	_, err = ledger.ApplyDelta(b, entity.TxAssignment, d(-11), item("i1"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(d(10)))
	assert.True(t, ise.Requested.Equal(d(11)))
}

func TestApplyDelta_AjusteDeConciliacionNegativoNoResoluble(t *testing.T) {
	b := &entity.Batch{ID: "B", CurrentQuantity: d(2)}
	_, err := ledger.ApplyDelta(b, entity.TxAdjustment, d(-3), entity.StockReconciliationRef{ID: "run"})
	assert.ErrorIs(t, err, domain.ErrUnresolvableDiscrepancy)
}

// ──────────────────────────────────────────────────────────────────────────────
// Replay
// ──────────────────────────────────────────────────────────────────────────────

func TestSortReplay_OrdenPorFechaLuegoID(t *testing.T) {
	txs := []*entity.LedgerTransaction{
		tx("c", entity.TxSale, -1, nil, time.Second),
		tx("b", entity.TxSale, -1, nil, 0),
		tx("a", entity.TxSale, -1, nil, time.Second),
	}
	ledger.SortReplay(txs)
	assert.Equal(t, []string{"b", "a", "c"}, ids(txs))
}

func TestExpectedQuantity_OmiteRestockInicialYAjustesDeConciliacion(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("1", entity.TxRestock, 100, nil, 0),
		tx("2", entity.TxAssignment, -30, item("i1"), time.Minute),
		tx("3", entity.TxAdjustment, 5, entity.StockReconciliationRef{ID: "r1"}, 2*time.Minute),
		tx("4", entity.TxAdjustment, -2, entity.SystemCorrectionRef{ID: "c1"}, 3*time.Minute),
		tx("5", entity.TxRestock, 20, nil, 4*time.Minute),
		tx("6", entity.TxReturn, 4, item("i1"), 5*time.Minute),
	}
	r := ledger.ExpectedQuantity(d(100), hist)
	assert.True(t, r.Expected.Equal(d(94)), "100 - 30 + 20 + 4, obtenido %s", r.Expected)
	assert.Equal(t, 3, r.Counted)
	assert.Equal(t, 3, r.Skipped)
}

func TestExpectedQuantity_LoteHeredadoSinAperturaCuentaTodosLosRestock(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("1", entity.TxAssignment, -30, item("i1"), 0),
		tx("2", entity.TxRestock, 50, nil, time.Minute),
	}
	r := ledger.ExpectedQuantity(d(100), hist)
	assert.True(t, r.Expected.Equal(d(120)), "100 - 30 + 50, obtenido %s", r.Expected)
	assert.Equal(t, 2, r.Counted)
	assert.Zero(t, r.Skipped)
}

func TestExpectedQuantity_PrimerRestockDistintoDeInicialSeCuenta(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("1", entity.TxRestock, 40, nil, 0),
		tx("2", entity.TxSale, -10, nil, time.Second),
	}
	r := ledger.ExpectedQuantity(d(100), hist)
	assert.True(t, r.Expected.Equal(d(130)), "obtenido %s", r.Expected)
}

func TestExpectedQuantity_SumaNegativaSeRecorta(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("1", entity.TxRestock, 10, nil, 0),
		tx("2", entity.TxSale, -15, nil, time.Second),
	}
	r := ledger.ExpectedQuantity(d(10), hist)
	assert.True(t, r.Raw.Equal(d(-5)))
	assert.True(t, r.Expected.IsZero())
}

func TestHasDrift_Tolerancia(t *testing.T) {
	assert.False(t, ledger.HasDrift(decimal.RequireFromString("70.005"), d(70)))
	assert.False(t, ledger.HasDrift(decimal.RequireFromString("70.01"), d(70)))
	assert.True(t, ledger.HasDrift(decimal.RequireFromString("70.02"), d(70)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Duplicados
// ──────────────────────────────────────────────────────────────────────────────

// Dos asignaciones de 30 a 10 s con referencias {Delivery, DeliveryItem}: se borra la Delivery.
func TestFindDuplicates_DiezSegundosBorraDelivery(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("fine", entity.TxAssignment, -30, item("i1"), 0),
		tx("coarse", entity.TxAssignment, -30, delivery("e1"), 10*time.Second),
	}
	groups := ledger.FindDuplicates(hist, ledger.DefaultWindow)
	require.Len(t, groups, 1)
	assert.False(t, groups[0].Ambiguous)
	assert.Equal(t, []string{"coarse"}, ids(groups[0].Remove))
}

func TestFindDuplicates_FueraDeVentanaNoAgrupa(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("fine", entity.TxAssignment, -30, item("i1"), 0),
		tx("coarse", entity.TxAssignment, -30, delivery("e1"), 61*time.Second),
	}
	assert.Empty(t, ledger.FindDuplicates(hist, ledger.DefaultWindow))
}

// La ventana se mide contra el predecesor inmediato, no contra el primero de la cadena.
func TestFindDuplicates_CadenaEncadenada(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("fine", entity.TxAssignment, -30, item("i1"), 0),
		tx("other", entity.TxAssignment, -7, item("i2"), 50*time.Second),
		tx("coarse", entity.TxAssignment, -30, delivery("e1"), 100*time.Second),
	}
	groups := ledger.FindDuplicates(hist, ledger.DefaultWindow)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"coarse"}, ids(groups[0].Remove))
}

func TestFindDuplicates_MagnitudDistintaNoEsDuplicado(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("fine", entity.TxAssignment, -30, item("i1"), 0),
		tx("coarse", entity.TxAssignment, -31, delivery("e1"), time.Second),
	}
	assert.Empty(t, ledger.FindDuplicates(hist, 0))
}

func TestFindDuplicates_DosLineasIndependientesNoSeTocan(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("a", entity.TxAssignment, -30, item("i1"), 0),
		tx("b", entity.TxAssignment, -30, item("i2"), time.Second),
	}
	assert.Empty(t, ledger.FindDuplicates(hist, ledger.DefaultWindow))
}

func TestFindDuplicates_MasDeliveryQueLineasEsAmbiguo(t *testing.T) {
	hist := []*entity.LedgerTransaction{
		tx("a", entity.TxAssignment, -30, delivery("e1"), 0),
		tx("b", entity.TxAssignment, -30, item("i1"), time.Second),
		tx("c", entity.TxAssignment, -30, delivery("e2"), 2*time.Second),
	}
	groups := ledger.FindDuplicates(hist, ledger.DefaultWindow)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Ambiguous)
	assert.Empty(t, groups[0].Remove)
}

// ──────────────────────────────────────────────────────────────────────────────
// Analyze
// ──────────────────────────────────────────────────────────────────────────────

// Lote inicial 100, asignación -30 duplicada, cantidad 40 → 70 tras borrar el duplicado.
func TestAnalyze_EscenarioDobleEscritura(t *testing.T) {
	b := &entity.Batch{ID: "B", InitialQuantity: d(100), CurrentQuantity: d(40)}
	hist := []*entity.LedgerTransaction{
		tx("coarse", entity.TxAssignment, -30, delivery("e1"), 2*time.Second),
		tx("open", entity.TxRestock, 100, nil, 0),
		tx("fine", entity.TxAssignment, -30, item("i1"), time.Second),
	}
	p := ledger.Analyze(b, hist, ledger.DefaultWindow, ledger.Tolerance)

	assert.Equal(t, []string{"coarse"}, ids(p.Remove))
	assert.Equal(t, []string{"open", "fine"}, ids(p.Remaining))
	assert.True(t, p.Replay.Expected.Equal(d(70)))
	assert.True(t, p.Delta.Equal(d(30)))
	assert.True(t, p.Drift)
	assert.True(t, p.NeedsFix())
}

func TestAnalyze_LoteConsistenteNoRequiereCambios(t *testing.T) {
	b := &entity.Batch{ID: "B", InitialQuantity: d(50), CurrentQuantity: d(45)}
	hist := []*entity.LedgerTransaction{
		tx("open", entity.TxRestock, 50, nil, 0),
		tx("s", entity.TxSale, -5, nil, time.Minute),
	}
	p := ledger.Analyze(b, hist, ledger.DefaultWindow, ledger.Tolerance)
	assert.False(t, p.NeedsFix())
	assert.False(t, p.Negative)
}

// ──────────────────────────────────────────────────────────────────────────────
// Disponibilidad y costo
// ──────────────────────────────────────────────────────────────────────────────

func TestAvailableForDelivery_NuncaNegativoNiMayorQueActual(t *testing.T) {
	pending := ledger.PendingRequested([]*entity.Assignment{
		{Status: entity.AssignmentPending, RequestedQuantity: d(30)},
		{Status: entity.AssignmentDelivered, RequestedQuantity: d(100)},
		{Status: entity.AssignmentPending, RequestedQuantity: d(10)},
	})
	assert.True(t, pending.Equal(d(40)))
	assert.True(t, ledger.AvailableForDelivery(d(100), pending).Equal(d(60)))
	assert.True(t, ledger.AvailableForDelivery(d(20), pending).IsZero())
}

func TestWeightedUnitCost_PromedioPonderado(t *testing.T) {
	// (10*1000 + 30*2000) / 40 = 1750
	got := ledger.WeightedUnitCost(d(10), d(1000), d(30), d(2000))
	assert.True(t, got.Equal(d(1750)), "obtenido %s", got)
	assert.True(t, ledger.WeightedUnitCost(decimal.Zero, decimal.Zero, decimal.Zero, d(5)).Equal(d(5)))
}
