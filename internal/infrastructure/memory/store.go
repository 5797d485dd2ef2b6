// Package memory implementa los repositorios del ledger en memoria, para desarrollo y tests.
// Las transacciones se simulan con un mutex global más snapshot y restauración en caso de error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/batch-ledger/internal/application/inventory"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store guarda todo el estado del ledger. Los repositorios devuelven copias.
type Store struct {
	mu sync.Mutex
	st state
}

type state struct {
	batches     map[string]entity.Batch
	ledger      map[string][]entity.LedgerTransaction // por lote, en orden de inserción
	assignments map[string]entity.Assignment
	products    map[string]entity.Product
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: state{
		batches:     make(map[string]entity.Batch),
		ledger:      make(map[string][]entity.LedgerTransaction),
		assignments: make(map[string]entity.Assignment),
		products:    make(map[string]entity.Product),
	}}
}

// Repos devuelve repositorios fuera de transacción; cada llamada toma el mutex.
func (s *Store) Repos() inventory.Repos {
	return s.view(false)
}

// Run ejecuta fn con el store bloqueado. Si fn falla, se restaura el snapshot previo.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	if err := fn(s.view(true)); err != nil {
		s.st = snap
		return err
	}
	return nil
}

func (s *Store) view(inTx bool) inventory.Repos {
	v := &view{s: s, inTx: inTx}
	return inventory.Repos{
		Batches:     &batchRepo{v},
		Ledger:      &ledgerRepo{v},
		Assignments: &assignmentRepo{v},
		Products:    &productRepo{v},
	}
}

// view decide si cada operación debe tomar el mutex (fuera de tx) o ya lo tiene (dentro de Run).
type view struct {
	s    *Store
	inTx bool
}

func (v *view) do(fn func(st *state) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(&v.s.st)
}

func (st state) clone() state {
	out := state{
		batches:     make(map[string]entity.Batch, len(st.batches)),
		ledger:      make(map[string][]entity.LedgerTransaction, len(st.ledger)),
		assignments: make(map[string]entity.Assignment, len(st.assignments)),
		products:    make(map[string]entity.Product, len(st.products)),
	}
	for k, b := range st.batches {
		out.batches[k] = b
	}
	for k, rows := range st.ledger {
		out.ledger[k] = append([]entity.LedgerTransaction(nil), rows...)
	}
	for k, a := range st.assignments {
		out.assignments[k] = a
	}
	for k, p := range st.products {
		out.products[k] = p
	}
	return out
}
