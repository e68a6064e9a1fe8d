package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/upload"
)

// UploadHandler subida de archivos (multipart, campo "file").
type UploadHandler struct {
	uc *upload.UploadUseCase
}

// NewUploadHandler construye el handler.
func NewUploadHandler(uc *upload.UploadUseCase) *UploadHandler {
	return &UploadHandler{uc: uc}
}

// Upload godoc
// @Summary      Subir archivo
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "jpg, jpeg, png, gif, webp o pdf"
// @Success      201   {object}  dto.UploadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el campo file es requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	out, err := h.uc.Upload(c.UserContext(), fh.Filename, fh.Size, f)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
