package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// SortReplay ordena los movimientos de forma estricta por (created_at, id) ascendente.
func SortReplay(txs []*entity.LedgerTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return Less(txs[i], txs[j])
	})
}

// Less es el orden total del replay.
func Less(a, b *entity.LedgerTransaction) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Replay resume el historial de un lote.
type Replay struct {
	Raw      decimal.Decimal // initial + Σ deltas contados, sin recortar
	Expected decimal.Decimal // max(0, Raw)
	Counted  int
	Skipped  int
}

// ExpectedQuantity recalcula la cantidad de un lote desde su historial ordenado.
//
// La apertura del lote (primera fila, restock por initial_quantity) ya está en initial
// y no se suma otra vez; un lote heredado sin esa fila cuenta todos sus restocks.
// Los ajustes de conciliación se omiten para no acumular correcciones.
func ExpectedQuantity(initial decimal.Decimal, ordered []*entity.LedgerTransaction) Replay {
	r := Replay{Raw: initial}
	for i, tx := range ordered {
		if i == 0 && IsOpeningRestock(tx, initial) {
			r.Skipped++
			continue
		}
		if IsReconciliationAdjustment(tx) {
			r.Skipped++
			continue
		}
		r.Raw = r.Raw.Add(tx.Quantity)
		r.Counted++
	}
	r.Expected = decimal.Max(r.Raw, decimal.Zero)
	return r
}

// IsOpeningRestock indica si tx es la imagen en el ledger de la creación del lote.
func IsOpeningRestock(tx *entity.LedgerTransaction, initial decimal.Decimal) bool {
	return tx.Type == entity.TxRestock && tx.Quantity.Equal(initial)
}

// HasDrift indica si la cantidad materializada se aleja del replay más que la tolerancia.
func HasDrift(current, expected decimal.Decimal) bool {
	return driftBeyond(current, expected, Tolerance)
}

func driftBeyond(current, expected, tol decimal.Decimal) bool {
	if !tol.IsPositive() {
		tol = Tolerance
	}
	return current.Sub(expected).Abs().GreaterThan(tol)
}
