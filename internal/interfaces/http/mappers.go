package http

import (
	"github.com/jhoicas/batch-ledger/internal/application/dto"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

func toBatchDTO(b *entity.Batch) dto.BatchDTO {
	return dto.BatchDTO{
		ID:              b.ID,
		ProductID:       b.ProductID,
		BatchNumber:     b.BatchNumber,
		InitialQuantity: b.InitialQuantity,
		CurrentQuantity: b.CurrentQuantity,
		UnitCost:        b.UnitCost,
		IsActive:        b.IsActive,
		Exhausted:       b.IsExhausted(),
		UpdatedAt:       b.UpdatedAt,
	}
}

func toLedgerDTO(t *entity.LedgerTransaction) dto.LedgerEntryDTO {
	out := dto.LedgerEntryDTO{
		ID:            t.ID,
		Type:          string(t.Type),
		Quantity:      t.Quantity,
		BalanceAfter:  t.BalanceAfter,
		ReferenceKind: string(entity.KindOf(t.Reference)),
		Notes:         t.Notes,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
	}
	if t.Reference != nil {
		out.ReferenceID = t.Reference.RawID()
	}
	return out
}

func toAssignmentDTO(a *entity.Assignment) dto.AssignmentDTO {
	out := dto.AssignmentDTO{
		ID:                a.ID,
		BatchID:           a.BatchID,
		DeliveryItemID:    string(a.DeliveryItemID),
		SalesmanID:        a.SalesmanID,
		RequestedQuantity: a.RequestedQuantity,
		DeliveredQuantity: a.DeliveredQuantity,
		ReturnedQuantity:  a.ReturnedQuantity,
		Status:            string(a.Status),
	}
	if a.DeliveryID != nil {
		out.DeliveryID = string(*a.DeliveryID)
	}
	return out
}
