package http

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/tableapi"
	"github.com/jhoicas/dresssync-api/internal/domain"
)

// TableHandler CRUD genérico /api/table/:tableId/{page,create,update,delete}.
type TableHandler struct {
	uc *tableapi.TableUseCase
}

// NewTableHandler construye el handler.
func NewTableHandler(uc *tableapi.TableUseCase) *TableHandler {
	return &TableHandler{uc: uc}
}

// decodeBody usa UseNumber para no perder precisión en enteros y montos.
func decodeBody(c *fiber.Ctx, v any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	return dec.Decode(v)
}

func tableID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("tableId")
	if err != nil || id <= 0 {
		return 0, domain.ErrTableNotFound
	}
	return id, nil
}

// Page godoc
// @Summary      Página de filas
// @Tags         table
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tableId  path  int                   true  "ID de tabla"
// @Param        body     body  dto.TablePageRequest  true  "PageSize, PageNo, Where, Keyword, OrderBy, OrderDir"
// @Success      200  {object}  dto.TablePageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/table/{tableId}/page [post]
func (h *TableHandler) Page(c *fiber.Ctx) error {
	id, err := tableID(c)
	if err != nil {
		return err
	}
	var in dto.TablePageRequest
	if len(c.Body()) > 0 {
		if err := decodeBody(c, &in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Page(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear fila
// @Tags         table
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tableId  path  int                     true  "ID de tabla"
// @Param        body     body  dto.TableCreateRequest  true  "Data"
// @Success      201  {object}  dto.TableRowResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/table/{tableId}/create [post]
func (h *TableHandler) Create(c *fiber.Ctx) error {
	id, err := tableID(c)
	if err != nil {
		return err
	}
	var in dto.TableCreateRequest
	if err := decodeBody(c, &in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Modificar fila
// @Tags         table
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tableId  path  int                     true  "ID de tabla"
// @Param        body     body  dto.TableUpdateRequest  true  "Id, Data"
// @Success      200  {object}  dto.TableRowResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/table/{tableId}/update [post]
func (h *TableHandler) Update(c *fiber.Ctx) error {
	id, err := tableID(c)
	if err != nil {
		return err
	}
	var in dto.TableUpdateRequest
	if err := decodeBody(c, &in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar fila
// @Tags         table
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tableId  path  int                     true  "ID de tabla"
// @Param        body     body  dto.TableDeleteRequest  true  "Id"
// @Success      200  {object}  dto.TableDeleteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/table/{tableId}/delete [post]
func (h *TableHandler) Delete(c *fiber.Ctx) error {
	id, err := tableID(c)
	if err != nil {
		return err
	}
	var in dto.TableDeleteRequest
	if err := decodeBody(c, &in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Delete(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
