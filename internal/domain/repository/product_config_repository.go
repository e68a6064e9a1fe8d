package repository

import (
	"context"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

// ProductConfigRepository puerto del catálogo configurable.
type ProductConfigRepository interface {
	// ListActive devuelve las entradas activas ordenadas por categoría y sort_order.
	ListActive(ctx context.Context) ([]*entity.ProductConfig, error)
	Create(ctx context.Context, cfg *entity.ProductConfig) error
	Count(ctx context.Context) (int, error)
}
