package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/install"
)

// InstallHandler asistente de instalación (público mientras la app no está instalada).
type InstallHandler struct {
	uc *install.InstallUseCase
}

// NewInstallHandler construye el handler.
func NewInstallHandler(uc *install.InstallUseCase) *InstallHandler {
	return &InstallHandler{uc: uc}
}

// Status godoc
// @Summary      Estado de la instalación
// @Tags         install
// @Produce      json
// @Success      200  {object}  dto.InstallStatusResponse
// @Router       /api/install/status [get]
func (h *InstallHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.uc.Status())
}

// TestDB godoc
// @Summary      Probar conexión
// @Tags         install
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InstallDBRequest  true  "datos de conexión"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/install/test-db [post]
func (h *InstallHandler) TestDB(c *fiber.Ctx) error {
	var in dto.InstallDBRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.TestDB(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Install godoc
// @Summary      Instalar
// @Description  Migra la base, crea el gerente, siembra el catálogo y escribe .env. Requiere reinicio.
// @Tags         install
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InstallRequest  true  "db, jwt_secret, smtp, admin"
// @Success      200   {object}  dto.InstallResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/install/install [post]
func (h *InstallHandler) Install(c *fiber.Ctx) error {
	var in dto.InstallRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Install(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
