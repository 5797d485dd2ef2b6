package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/batch-ledger/internal/application/dto"
	"github.com/jhoicas/batch-ledger/internal/application/inventory"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
)

// AssignmentHandler maneja el ciclo de vida de las asignaciones (protegido).
type AssignmentHandler struct {
	uc *inventory.AssignmentUseCase
}

// NewAssignmentHandler construye el handler.
func NewAssignmentHandler(uc *inventory.AssignmentUseCase) *AssignmentHandler {
	return &AssignmentHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar cantidad de un lote para una línea de entrega
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "batch_id, delivery_item_id, salesman_id, quantity"
// @Success      201   {object}  dto.AssignmentDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/assignments [post]
func (h *AssignmentHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	req := inventory.ReserveInput{
		BatchID:        in.BatchID,
		DeliveryItemID: entity.DeliveryItemID(in.DeliveryItemID),
		SalesmanID:     in.SalesmanID,
		Quantity:       in.Quantity,
		CreatedBy:      GetUserID(c),
	}
	if in.DeliveryID != "" {
		d := entity.DeliveryID(in.DeliveryID)
		req.DeliveryID = &d
	}
	a, err := h.uc.Reserve(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAssignmentDTO(a))
}

// Fulfill registra lo entregado; el faltante vuelve al lote como ajuste.
func (h *AssignmentHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.QuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, err := h.uc.Fulfill(c.UserContext(), c.Params("id"), in.Quantity, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAssignmentDTO(a))
}

// Return registra una devolución sobre lo entregado.
func (h *AssignmentHandler) Return(c *fiber.Ctx) error {
	var in dto.QuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, err := h.uc.ReturnStock(c.UserContext(), c.Params("id"), in.Quantity, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAssignmentDTO(a))
}

// Close marca la asignación como devuelta (estado terminal).
func (h *AssignmentHandler) Close(c *fiber.Ctx) error {
	a, err := h.uc.MarkReturned(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAssignmentDTO(a))
}
