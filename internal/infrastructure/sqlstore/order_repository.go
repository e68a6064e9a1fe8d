package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_no, agent_id, customer_name, customer_phone, customer_address, status,
	total_quantity, total_amount, notes, created_at, updated_at`

// OrderRepo persistencia de pedidos (orders) y sus ítems (order_items).
type OrderRepo struct {
	q database.Querier
}

// NewOrderRepository construye el repositorio de pedidos.
func NewOrderRepository(q database.Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta cabecera e ítems. Debe llamarse dentro de una transacción.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNo, o.AgentID, o.CustomerName, o.CustomerPhone, o.CustomerAddress, o.Status,
		o.TotalQuantity, o.TotalAmount, o.Notes, o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_type, color, neck_type, size, quantity, unit_price, line_total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.OrderID, it.ProductType, it.Color, it.NeckType, it.Size, it.Quantity,
			it.UnitPrice, it.LineTotal, it.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve el pedido con sus ítems; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate igual que GetByID pero bloquea la fila del pedido hasta el fin de la transacción.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, r.q.Dialect().ForUpdate())
}

func (r *OrderRepo) get(ctx context.Context, id, lock string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	if lock != "" {
		query += " " + lock
	}
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderNo, &o.AgentID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &o.Status,
		&o.TotalQuantity, &o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.q.QueryRows(ctx, `
		SELECT id, order_id, product_type, color, neck_type, size, quantity, unit_price, line_total, created_at
		FROM order_items WHERE order_id = ?
		ORDER BY product_type, color, neck_type, created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductType, &it.Color, &it.NeckType, &it.Size,
			&it.Quantity, &it.UnitPrice, &it.LineTotal, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus pasa el pedido de from a to solo si sigue en from.
// Si otro proceso ya lo cambió devuelve ErrInvalidTransition; si no existe, ErrNotFound.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error {
	n, err := r.q.Exec(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, at.UTC(), id, from)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n > 0 {
		return nil
	}
	var current string
	if err := r.q.QueryRow(ctx, `SELECT status FROM orders WHERE id = ?`, id).Scan(&current); err != nil {
		if database.IsNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get order status: %w", err)
	}
	return fmt.Errorf("%w: el pedido está en %s, no en %s", domain.ErrInvalidTransition, current, from)
}

// RefreshTotals recalcula cantidad y monto del pedido a partir de sus ítems.
func (r *OrderRepo) RefreshTotals(ctx context.Context, id string, at time.Time) error {
	n, err := r.q.Exec(ctx, `
		UPDATE orders SET
			total_quantity = (SELECT COALESCE(SUM(quantity), 0) FROM order_items WHERE order_id = ?),
			total_amount = (SELECT COALESCE(SUM(line_total), 0) FROM order_items WHERE order_id = ?),
			updated_at = ?
		WHERE id = ?`, id, id, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("refresh order totals: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el pedido y sus ítems. Debe llamarse dentro de una transacción.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	n, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
