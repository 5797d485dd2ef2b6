package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/batch-ledger/internal/application/dto"
	"github.com/jhoicas/batch-ledger/internal/application/inventory"
)

// BatchHandler maneja consultas de lotes, reabastecimiento y retiro (protegido).
type BatchHandler struct {
	query   *inventory.QueryUseCase
	restock *inventory.RestockUseCase
	sales   *inventory.SaleUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(query *inventory.QueryUseCase, restock *inventory.RestockUseCase, sales *inventory.SaleUseCase) *BatchHandler {
	return &BatchHandler{query: query, restock: restock, sales: sales}
}

// GetQuantity godoc
// @Summary      Cantidad actual del lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  dto.QuantityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/quantity [get]
func (h *BatchHandler) GetQuantity(c *fiber.Ctx) error {
	id := c.Params("id")
	qty, err := h.query.GetCurrentQuantity(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.QuantityResponse{ID: id, Quantity: qty})
}

// GetAvailable godoc
// @Summary      Disponible para entrega (cantidad actual menos asignaciones pendientes)
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  dto.QuantityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/available [get]
func (h *BatchHandler) GetAvailable(c *fiber.Ctx) error {
	id := c.Params("id")
	qty, err := h.query.GetAvailableForDelivery(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.QuantityResponse{ID: id, Quantity: qty})
}

// GetLedger devuelve el historial del lote en orden de replay, paginado con limit/offset.
func (h *BatchHandler) GetLedger(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit/offset inválidos"})
	}
	page.DefaultPage()

	list, err := h.query.GetLedger(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	from := min(page.Offset, len(list))
	to := min(from+page.Limit, len(list))
	out := make([]dto.LedgerEntryDTO, 0, to-from)
	for _, t := range list[from:to] {
		out = append(out, toLedgerDTO(t))
	}
	return c.JSON(fiber.Map{
		"total":   len(list),
		"page":    dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
		"entries": out,
	})
}

// GetProductStock godoc
// @Summary      Stock total del producto (suma de lotes activos)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  dto.QuantityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *BatchHandler) GetProductStock(c *fiber.Ctx) error {
	id := c.Params("id")
	qty, err := h.query.GetProductTotalStock(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.QuantityResponse{ID: id, Quantity: qty})
}

// Restock godoc
// @Summary      Reabastecer un lote o crear uno nuevo
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "batch_id, o product_id + batch_number; quantity; unit_cost"
// @Success      201   {object}  dto.BatchDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/restock [post]
func (h *BatchHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	req := inventory.RestockInput{
		BatchID:   in.BatchID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		CreatedBy: GetUserID(c),
		Notes:     in.Notes,
	}
	if in.BatchID == "" {
		spec := &inventory.NewBatchSpec{ProductID: in.ProductID, BatchNumber: in.BatchNumber}
		if in.UnitCost != nil {
			spec.UnitCost = *in.UnitCost
		}
		req.NewBatch = spec
	}
	b, err := h.restock.Restock(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchDTO(b))
}

// Deactivate retira el lote del stock activo.
func (h *BatchHandler) Deactivate(c *fiber.Ctx) error {
	b, err := h.restock.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchDTO(b))
}

// Sell registra una venta directa sobre el lote.
func (h *BatchHandler) Sell(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	tx, err := h.sales.Sell(c.UserContext(), inventory.SaleInput{
		BatchID:       c.Params("id"),
		Quantity:      in.Quantity,
		InvoiceNumber: in.InvoiceNumber,
		CreatedBy:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerDTO(tx))
}
