package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dresssync-api/internal/application/report"
)

// ReportHandler resumen de ventas del gerente.
type ReportHandler struct {
	uc *report.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Summary godoc
// @Summary      Resumen de ventas
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from  query  string  false  "YYYY-MM-DD (por defecto primer día del mes)"
// @Param        to    query  string  false  "YYYY-MM-DD inclusive (por defecto hoy)"
// @Success      200   {object}  dto.ReportSummaryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), GetActor(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
