package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// DefaultWindow es la ventana entre asignaciones consecutivas para considerarlas
// parte del mismo evento físico.
const DefaultWindow = 60 * time.Second

// DuplicateGroup es un subgrupo de asignaciones con la misma magnitud dentro de una
// cadena temporal cuyas referencias son exactamente {Delivery, DeliveryItem}.
type DuplicateGroup struct {
	Magnitude decimal.Decimal
	Rows      []*entity.LedgerTransaction
	Remove    []*entity.LedgerTransaction // filas Delivery a borrar
	Ambiguous bool                        // más filas Delivery que DeliveryItem: no se borra nada
}

// Detail describe el grupo para el reporte.
func (g DuplicateGroup) Detail() string {
	if g.Ambiguous {
		return fmt.Sprintf("%d asignaciones de %s con referencias Delivery y DeliveryItem no emparejables",
			len(g.Rows), g.Magnitude.String())
	}
	return fmt.Sprintf("%d asignaciones duplicadas de %s referenciadas a Delivery",
		len(g.Remove), g.Magnitude.String())
}

// FindDuplicates detecta dobles escrituras heredadas. ordered debe venir en orden de replay.
func FindDuplicates(ordered []*entity.LedgerTransaction, window time.Duration) []DuplicateGroup {
	if window <= 0 {
		window = DefaultWindow
	}
	var out []DuplicateGroup
	for _, chain := range chains(ordered, window) {
		for _, sub := range byMagnitude(chain) {
			if g, ok := classify(sub); ok {
				out = append(out, g)
			}
		}
	}
	return out
}

// chains agrupa asignaciones donde cada una dista a lo sumo window de la anterior.
func chains(ordered []*entity.LedgerTransaction, window time.Duration) [][]*entity.LedgerTransaction {
	var (
		out  [][]*entity.LedgerTransaction
		cur  []*entity.LedgerTransaction
		prev *entity.LedgerTransaction
	)
	for _, tx := range ordered {
		if tx.Type != entity.TxAssignment {
			continue
		}
		if prev != nil && tx.CreatedAt.Sub(prev.CreatedAt) > window {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, tx)
		prev = tx
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// byMagnitude subagrupa por |cantidad| conservando el orden de aparición.
func byMagnitude(chain []*entity.LedgerTransaction) [][]*entity.LedgerTransaction {
	idx := make(map[string]int)
	var out [][]*entity.LedgerTransaction
	for _, tx := range chain {
		key := tx.Quantity.Abs().String()
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], tx)
	}
	return out
}

func classify(sub []*entity.LedgerTransaction) (DuplicateGroup, bool) {
	if len(sub) < 2 {
		return DuplicateGroup{}, false
	}
	var coarse, fine []*entity.LedgerTransaction
	for _, tx := range sub {
		switch entity.KindOf(tx.Reference) {
		case entity.RefDelivery:
			coarse = append(coarse, tx)
		case entity.RefDeliveryItem:
			fine = append(fine, tx)
		default:
			return DuplicateGroup{}, false
		}
	}
	if len(coarse) == 0 || len(fine) == 0 {
		return DuplicateGroup{}, false
	}
	g := DuplicateGroup{Magnitude: sub[0].Quantity.Abs(), Rows: sub}
	if len(coarse) > len(fine) {
		g.Ambiguous = true
		return g, true
	}
	g.Remove = coarse
	return g, true
}
