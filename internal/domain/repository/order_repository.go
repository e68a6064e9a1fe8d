package repository

import (
	"context"
	"time"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia para pedidos y sus ítems.
type OrderRepository interface {
	// Create inserta el pedido y todos sus ítems (usar dentro de una transacción).
	Create(ctx context.Context, order *entity.Order) error
	// GetByID devuelve el pedido con Items cargados, o (nil, nil).
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetByIDForUpdate bloquea la fila del pedido cuando el motor lo soporta (usar dentro de una transacción).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// UpdateStatus cambia el estado solo si el pedido sigue en from (compare-and-set).
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error
	// RefreshTotals recalcula total_quantity y total_amount desde order_items.
	RefreshTotals(ctx context.Context, id string, at time.Time) error
	// Delete borra el pedido con sus ítems.
	Delete(ctx context.Context, id string) error
}
