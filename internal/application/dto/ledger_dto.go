package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchDTO representación de un lote en respuestas.
type BatchDTO struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	BatchNumber     string          `json:"batch_number"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	IsActive        bool            `json:"is_active"`
	Exhausted       bool            `json:"exhausted"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// QuantityResponse cantidad puntual de un lote o producto.
type QuantityResponse struct {
	ID       string          `json:"id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// LedgerEntryDTO un movimiento del ledger.
type LedgerEntryDTO struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceKind string          `json:"reference_kind,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RestockRequest body para POST /api/batches/restock.
// Con batch_id reabastece; con product_id + batch_number crea el lote.
type RestockRequest struct {
	BatchID     string           `json:"batch_id,omitempty"`
	ProductID   string           `json:"product_id,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// ReserveRequest body para POST /api/assignments.
type ReserveRequest struct {
	BatchID        string          `json:"batch_id"`
	DeliveryItemID string          `json:"delivery_item_id"`
	DeliveryID     string          `json:"delivery_id,omitempty"`
	SalesmanID     string          `json:"salesman_id"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// QuantityRequest body con una cantidad (fulfill y returns).
type QuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// AssignmentDTO representación de una asignación.
type AssignmentDTO struct {
	ID                string          `json:"id"`
	BatchID           string          `json:"batch_id"`
	DeliveryID        string          `json:"delivery_id,omitempty"`
	DeliveryItemID    string          `json:"delivery_item_id"`
	SalesmanID        string          `json:"salesman_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	DeliveredQuantity decimal.Decimal `json:"delivered_quantity"`
	ReturnedQuantity  decimal.Decimal `json:"returned_quantity"`
	Status            string          `json:"status"`
}

// ReconciliationRequest body para POST /api/admin/reconciliation.
type ReconciliationRequest struct {
	Scope  string `json:"scope,omitempty"` // all | product | batch
	ID     string `json:"id,omitempty"`
	DryRun bool   `json:"dry_run"`
}

// InsufficientStockResponse detalle del rechazo por stock.
type InsufficientStockResponse struct {
	ErrorResponse
	BatchID   string          `json:"batch_id"`
	Available decimal.Decimal `json:"available"`
	Requested decimal.Decimal `json:"requested"`
}

// SaleRequest body para POST /api/batches/:id/sales.
type SaleRequest struct {
	Quantity      decimal.Decimal `json:"quantity"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
}
