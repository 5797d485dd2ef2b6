package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Ledger de lotes.
	ErrBatchInactive           = errors.New("lote inactivo")
	ErrDuplicateLedgerEntry    = errors.New("movimiento de ledger duplicado")
	ErrInvalidTransition       = errors.New("transición de estado inválida")
	ErrUnresolvableDiscrepancy = errors.New("discrepancia no resoluble automáticamente")
	ErrLockNotObtained         = errors.New("no se pudo obtener el bloqueo del lote")
)

// InsufficientStockError detalla un rechazo por falta de stock disponible.
type InsufficientStockError struct {
	BatchID   string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en lote %s: disponible %s, solicitado %s",
		e.BatchID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
