package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssignmentStatus estado de una asignación de lote a una entrega.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentDelivered AssignmentStatus = "delivered"
	AssignmentPartial   AssignmentStatus = "partial"
	AssignmentReturned  AssignmentStatus = "returned" // terminal, lo marca quien llama
)

// Assignment reserva cantidad de un lote para una línea de entrega a un vendedor.
type Assignment struct {
	ID                string
	BatchID           string
	DeliveryID        *DeliveryID // opcional
	DeliveryItemID    DeliveryItemID
	SalesmanID        string
	RequestedQuantity decimal.Decimal
	DeliveredQuantity decimal.Decimal
	ReturnedQuantity  decimal.Decimal
	Status            AssignmentStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Reference devuelve la referencia canónica de los movimientos de esta asignación.
func (a *Assignment) Reference() Reference {
	return DeliveryItemRef{ID: a.DeliveryItemID}
}

// CanReturn indica si la asignación admite devoluciones.
func (a *Assignment) CanReturn() bool {
	return a.Status == AssignmentDelivered || a.Status == AssignmentPartial
}
