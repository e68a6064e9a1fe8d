package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/stock"
)

// StockHandler ajustes de inventario (gerente).
type StockHandler struct {
	uc *stock.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Adjust godoc
// @Summary      Ajustar stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AdjustStockRequest  true  "product_type, color, size, delta, reorder_level"
// @Success      200   {object}  dto.StockItemResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Adjust(c.UserContext(), GetActor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Low godoc
// @Summary      Stock bajo
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.StockItemResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) Low(c *fiber.Ctx) error {
	out, err := h.uc.ListLow(c.UserContext(), GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
