package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipo de movimiento del ledger de lotes.
type TransactionType string

const (
	TxRestock    TransactionType = "restock"    // entrada de mercancía
	TxAssignment TransactionType = "assignment" // reserva para una línea de entrega
	TxSale       TransactionType = "sale"       // venta directa
	TxReturn     TransactionType = "return"     // devolución de una asignación
	TxAdjustment TransactionType = "adjustment" // ajuste (entrega parcial o conciliación)
)

// Valid indica si el tipo es uno de los conocidos.
func (t TransactionType) Valid() bool {
	switch t {
	case TxRestock, TxAssignment, TxSale, TxReturn, TxAdjustment:
		return true
	}
	return false
}

// LedgerTransaction es un movimiento inmutable con delta con signo sobre un lote.
// BalanceAfter es una foto del saldo al momento de escribir.
type LedgerTransaction struct {
	ID           string
	BatchID      string
	Type         TransactionType
	Quantity     decimal.Decimal // positivo entrada, negativo salida
	BalanceAfter decimal.Decimal
	Reference    Reference // nil para entradas sin origen externo
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
}
