package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/domain"
)

// AllowedExtensions extensiones aceptadas (en minúsculas, con punto).
var AllowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".pdf": true,
}

// UploadUseCase valida y guarda archivos con nombre aleatorio.
type UploadUseCase struct {
	storage  ports.FileStorage
	maxBytes int64
}

// NewUploadUseCase maxMB <= 0 usa 5 MB.
func NewUploadUseCase(storage ports.FileStorage, maxMB int) *UploadUseCase {
	if maxMB <= 0 {
		maxMB = 5
	}
	return &UploadUseCase{storage: storage, maxBytes: int64(maxMB) << 20}
}

// MaxBytes tamaño máximo aceptado.
func (uc *UploadUseCase) MaxBytes() int64 { return uc.maxBytes }

// Upload guarda r con un nombre UUID conservando la extensión original.
func (uc *UploadUseCase) Upload(ctx context.Context, originalName string, size int64, r io.Reader) (*dto.UploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !AllowedExtensions[ext] {
		return nil, domain.NewValidationError(fmt.Sprintf("file: extensión %q no permitida", ext))
	}
	if size <= 0 {
		return nil, domain.NewValidationError("file: el archivo está vacío")
	}
	if size > uc.maxBytes {
		return nil, domain.NewValidationError(fmt.Sprintf("file: supera el máximo de %d MB", uc.maxBytes>>20))
	}

	name := uuid.New().String() + ext
	contentType := mime.TypeByExtension(ext)
	url, err := uc.storage.Save(ctx, name, io.LimitReader(r, uc.maxBytes), size, contentType)
	if err != nil {
		return nil, err
	}
	return &dto.UploadResponse{URL: url, Filename: name, Size: size}, nil
}
