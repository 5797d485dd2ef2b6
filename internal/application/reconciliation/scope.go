package reconciliation

import (
	"fmt"

	"github.com/jhoicas/batch-ledger/internal/domain"
)

// ScopeKind alcance de una corrida.
type ScopeKind string

const (
	ScopeAll     ScopeKind = "all"
	ScopeProduct ScopeKind = "product"
	ScopeBatch   ScopeKind = "batch"
)

// Scope alcance explícito: todo, un producto o un lote.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// All alcance completo.
func All() Scope { return Scope{Kind: ScopeAll} }

// Product alcance de un producto y sus lotes.
func Product(id string) Scope { return Scope{Kind: ScopeProduct, ID: id} }

// Batch alcance de un solo lote.
func Batch(id string) Scope { return Scope{Kind: ScopeBatch, ID: id} }

// ParseScope valida el alcance recibido por HTTP o CLI. kind vacío equivale a "all".
func ParseScope(kind, id string) (Scope, error) {
	switch ScopeKind(kind) {
	case "", ScopeAll:
		return All(), nil
	case ScopeProduct, ScopeBatch:
		if id == "" {
			return Scope{}, fmt.Errorf("alcance %s requiere id: %w", kind, domain.ErrInvalidInput)
		}
		return Scope{Kind: ScopeKind(kind), ID: id}, nil
	}
	return Scope{}, fmt.Errorf("alcance desconocido %q: %w", kind, domain.ErrInvalidInput)
}
