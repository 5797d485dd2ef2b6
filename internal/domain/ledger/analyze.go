package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// Plan es el diagnóstico de un lote: qué borrar, qué cantidad debería tener y
// si hace falta un ajuste. Se calcula igual en modo simulación y en modo real.
type Plan struct {
	BatchID    string
	Duplicates []DuplicateGroup
	Remove     []*entity.LedgerTransaction
	Remaining  []*entity.LedgerTransaction
	Replay     Replay
	Current    decimal.Decimal
	Delta      decimal.Decimal // Expected − Current
	Drift      bool
	Negative   bool // la suma cruda quedó bajo cero y se recortó
}

// Analyze ordena el historial, detecta duplicados y recalcula la cantidad esperada
// sobre las filas que sobreviven al borrado. tolerance <= 0 usa Tolerance.
func Analyze(batch *entity.Batch, history []*entity.LedgerTransaction, window time.Duration, tolerance decimal.Decimal) Plan {
	ordered := make([]*entity.LedgerTransaction, len(history))
	copy(ordered, history)
	SortReplay(ordered)

	p := Plan{BatchID: batch.ID, Current: batch.CurrentQuantity}
	p.Duplicates = FindDuplicates(ordered, window)

	drop := make(map[string]struct{})
	for _, g := range p.Duplicates {
		for _, tx := range g.Remove {
			drop[tx.ID] = struct{}{}
			p.Remove = append(p.Remove, tx)
		}
	}
	for _, tx := range ordered {
		if _, ok := drop[tx.ID]; !ok {
			p.Remaining = append(p.Remaining, tx)
		}
	}

	p.Replay = ExpectedQuantity(batch.InitialQuantity, p.Remaining)
	p.Negative = p.Replay.Raw.IsNegative()
	p.Delta = p.Replay.Expected.Sub(p.Current)
	p.Drift = driftBeyond(p.Current, p.Replay.Expected, tolerance)
	return p
}

// NeedsFix indica si el plan implica alguna escritura.
func (p Plan) NeedsFix() bool {
	return len(p.Remove) > 0 || p.Drift
}
