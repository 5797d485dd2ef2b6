package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/batch-ledger/internal/application/dto"
	"github.com/jhoicas/batch-ledger/internal/application/reconciliation"
)

// ReconciliationHandler dispara corridas del motor de conciliación (solo admin).
type ReconciliationHandler struct {
	engine *reconciliation.Engine
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(engine *reconciliation.Engine) *ReconciliationHandler {
	return &ReconciliationHandler{engine: engine}
}

// Run godoc
// @Summary      Ejecutar conciliación del ledger
// @Description  Sin body concilia todo. dry_run=true solo reporta.
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconciliationRequest  false  "scope (all|product|batch), id, dry_run"
// @Success      200   {object}  reconciliation.Report
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/admin/reconciliation [post]
func (h *ReconciliationHandler) Run(c *fiber.Ctx) error {
	var in dto.ReconciliationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	scope, err := reconciliation.ParseScope(in.Scope, in.ID)
	if err != nil {
		return writeError(c, err)
	}
	report, err := h.engine.Run(c.UserContext(), scope, in.DryRun)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
