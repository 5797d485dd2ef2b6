package memory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// Utilidades para cargar datos heredados (con duplicados o deriva) que el flujo
// normal de escritura no permite producir.

// SeedBatch inserta un lote tal cual.
func (s *Store) SeedBatch(b entity.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.batches[b.ID] = b
}

// SeedProduct inserta un producto con sus cachés tal cual.
func (s *Store) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// SeedLedger inserta filas sin validar la unicidad, como hacía el doble registro antiguo.
func (s *Store) SeedLedger(rows ...entity.LedgerTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.st.ledger[row.BatchID] = append(s.st.ledger[row.BatchID], row)
	}
}

// SeedAssignment inserta una asignación tal cual.
func (s *Store) SeedAssignment(a entity.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.assignments[a.ID] = a
}

// ForceQuantity pisa current_quantity sin movimiento, para simular deriva.
func (s *Store) ForceQuantity(batchID string, q decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.batches[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	b.CurrentQuantity = q
	s.st.batches[batchID] = b
	return nil
}
