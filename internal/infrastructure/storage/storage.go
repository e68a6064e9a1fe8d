// Package storage guarda los archivos subidos en disco local o en un bucket compatible con S3.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/pkg/config"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

// New construye el almacenamiento según STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (ports.FileStorage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.UploadDir, cfg.PublicPath)
	case "s3":
		return NewS3Storage(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("storage: driver no soportado %q", cfg.Driver)
	}
}
