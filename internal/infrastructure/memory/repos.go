package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
	"github.com/jhoicas/batch-ledger/internal/domain/repository"
)

var (
	_ repository.BatchRepository      = (*batchRepo)(nil)
	_ repository.LedgerRepository     = (*ledgerRepo)(nil)
	_ repository.AssignmentRepository = (*assignmentRepo)(nil)
	_ repository.ProductRepository    = (*productRepo)(nil)
)

// ─── Lotes ────────────────────────────────────────────────────────────────────

type batchRepo struct{ v *view }

func (r *batchRepo) Create(_ context.Context, b *entity.Batch) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.batches[b.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.batches {
			if other.ProductID == b.ProductID && other.BatchNumber == b.BatchNumber {
				return domain.ErrDuplicate
			}
		}
		st.batches[b.ID] = *b
		return nil
	})
}

func (r *batchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.v.do(func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: el mutex del store ya serializa la transacción.
func (r *batchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *batchRepo) GetByNumber(_ context.Context, productID, batchNumber string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.v.do(func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID && b.BatchNumber == batchNumber {
				b := b
				out = &b
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *batchRepo) update(id string, fn func(b *entity.Batch)) error {
	return r.v.do(func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		fn(&b)
		st.batches[id] = b
		return nil
	})
}

func (r *batchRepo) UpdateQuantity(_ context.Context, id string, current decimal.Decimal) error {
	return r.update(id, func(b *entity.Batch) { b.CurrentQuantity = current })
}

func (r *batchRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(b *entity.Batch) { b.IsActive = active })
}

func (r *batchRepo) UpdateUnitCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.update(id, func(b *entity.Batch) { b.UnitCost = cost })
}

func (r *batchRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	err := r.v.do(func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID {
				b := b
				out = append(out, &b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *batchRepo) ListIDs(_ context.Context) ([]string, error) {
	var out []string
	err := r.v.do(func(st *state) error {
		for id := range st.batches {
			out = append(out, id)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// ─── Ledger ───────────────────────────────────────────────────────────────────

type ledgerRepo struct{ v *view }

// Append replica el índice único parcial (lote, variante, id) para filas assignment.
func (r *ledgerRepo) Append(_ context.Context, tx *entity.LedgerTransaction) error {
	return r.v.do(func(st *state) error {
		if tx.Type == entity.TxAssignment && tx.Reference != nil {
			for _, row := range st.ledger[tx.BatchID] {
				if row.Type == entity.TxAssignment && row.Reference != nil &&
					row.Reference.Kind() == tx.Reference.Kind() && row.Reference.RawID() == tx.Reference.RawID() {
					return domain.ErrDuplicateLedgerEntry
				}
			}
		}
		st.ledger[tx.BatchID] = append(st.ledger[tx.BatchID], *tx)
		return nil
	})
}

func (r *ledgerRepo) Replay(_ context.Context, batchID string) ([]*entity.LedgerTransaction, error) {
	var out []*entity.LedgerTransaction
	err := r.v.do(func(st *state) error {
		for _, row := range st.ledger[batchID] {
			row := row
			out = append(out, &row)
		}
		return nil
	})
	ledger.SortReplay(out)
	return out, err
}

func (r *ledgerRepo) DeleteByIDs(_ context.Context, batchID string, ids []string) (int64, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var n int64
	err := r.v.do(func(st *state) error {
		kept := st.ledger[batchID][:0:0]
		for _, row := range st.ledger[batchID] {
			if _, ok := drop[row.ID]; ok {
				n++
				continue
			}
			kept = append(kept, row)
		}
		st.ledger[batchID] = kept
		return nil
	})
	return n, err
}

// ─── Asignaciones ─────────────────────────────────────────────────────────────

type assignmentRepo struct{ v *view }

func (r *assignmentRepo) Create(_ context.Context, a *entity.Assignment) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.assignments[a.ID]; ok {
			return domain.ErrDuplicate
		}
		st.assignments[a.ID] = *a
		return nil
	})
}

func (r *assignmentRepo) GetByID(_ context.Context, id string) (*entity.Assignment, error) {
	var out *entity.Assignment
	err := r.v.do(func(st *state) error {
		a, ok := st.assignments[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *assignmentRepo) Update(_ context.Context, a *entity.Assignment) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.assignments[a.ID]; !ok {
			return domain.ErrNotFound
		}
		st.assignments[a.ID] = *a
		return nil
	})
}

func (r *assignmentRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.Assignment, error) {
	var out []*entity.Assignment
	err := r.v.do(func(st *state) error {
		for _, a := range st.assignments {
			if a.BatchID == batchID {
				a := a
				out = append(out, &a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *assignmentRepo) PendingQuantity(ctx context.Context, batchID string) (decimal.Decimal, error) {
	list, err := r.ListByBatch(ctx, batchID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.PendingRequested(list), nil
}

// ─── Productos ────────────────────────────────────────────────────────────────

type productRepo struct{ v *view }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *productRepo) AddStock(_ context.Context, id string, totalDelta, ownerDelta decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.TotalStock = p.TotalStock.Add(totalDelta)
		p.OwnerStock = p.OwnerStock.Add(ownerDelta)
		st.products[id] = p
		return nil
	})
}

func (r *productRepo) SetTotalStock(_ context.Context, id string, total decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.TotalStock = total
		st.products[id] = p
		return nil
	})
}

func (r *productRepo) ListIDs(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	err := r.v.do(func(st *state) error {
		for id := range st.products {
			add(id)
		}
		for _, b := range st.batches {
			add(b.ProductID)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}
