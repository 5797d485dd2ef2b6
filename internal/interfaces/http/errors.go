package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/batch-ledger/internal/application/dto"
	"github.com/jhoicas/batch-ledger/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: el primero que coincide con errors.Is gana.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicateLedgerEntry, fiber.StatusConflict, "DUPLICATE_LEDGER_ENTRY", "la línea de entrega ya tiene una asignación en este lote"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrBatchInactive, fiber.StatusConflict, "BATCH_INACTIVE", "el lote está inactivo"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION", "la asignación no admite esta operación"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrUnresolvableDiscrepancy, fiber.StatusUnprocessableEntity, "UNRESOLVABLE_DISCREPANCY", "discrepancia que requiere revisión manual"},
	{domain.ErrLockNotObtained, fiber.StatusServiceUnavailable, "LOCK_BUSY", "el lote está ocupado, intente de nuevo"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
}

// writeError traduce errores de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.InsufficientStockResponse{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: stockErr.Error()},
			BatchID:       stockErr.BatchID,
			Available:     stockErr.Available,
			Requested:     stockErr.Requested,
		})
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
