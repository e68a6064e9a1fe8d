package repository

import (
	"context"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por tipo+color+talla.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	GetByKey(ctx context.Context, key entity.StockKey) (*entity.StockItem, error)
	// GetByKeyForUpdate bloquea la fila cuando el motor lo soporta (SELECT ... FOR UPDATE).
	GetByKeyForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockItem, error)
	// Upsert inserta la fila si ID está vacío o actualiza cantidad y punto de reorden.
	Upsert(ctx context.Context, item *entity.StockItem) error
	ListLow(ctx context.Context) ([]*entity.StockItem, error)
}
