package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura. Los pedidos cancelados no cuentan como venta.
type ReportRepo struct {
	q database.Querier
}

// NewReportRepository construye el repositorio de reportes.
func NewReportRepository(q database.Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// SalesTotals pedidos, unidades y monto del período.
func (r *ReportRepo) SalesTotals(ctx context.Context, from, to time.Time) (repository.SalesTotals, error) {
	var t repository.SalesTotals
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_quantity), 0), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE status <> ? AND created_at >= ? AND created_at < ?`,
		entity.OrderStatusCancelled, from.UTC(), to.UTC(),
	).Scan(&t.Orders, &t.Quantity, &t.Amount)
	if err != nil {
		return t, fmt.Errorf("sales totals: %w", err)
	}
	return t, nil
}

// StatusCounts cantidad de pedidos por estado (todos los estados, incluidos cancelados).
func (r *ReportRepo) StatusCounts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	rows, err := r.q.QueryRows(ctx, `
		SELECT status, COUNT(*) FROM orders
		WHERE created_at >= ? AND created_at < ?
		GROUP BY status`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int, len(entity.OrderStatuses))
	for _, s := range entity.OrderStatuses {
		out[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// AgentPerformance ventas por agente, incluidos los agentes sin pedidos en el período.
func (r *ReportRepo) AgentPerformance(ctx context.Context, from, to time.Time) ([]repository.AgentPerformanceResult, error) {
	rows, err := r.q.QueryRows(ctx, `
		SELECT a.id, a.name, a.commission_rate,
			COUNT(o.id), COALESCE(SUM(o.total_quantity), 0), COALESCE(SUM(o.total_amount), 0)
		FROM agents a
		LEFT JOIN orders o ON o.agent_id = a.id AND o.status <> ? AND o.created_at >= ? AND o.created_at < ?
		GROUP BY a.id, a.name, a.commission_rate
		ORDER BY COALESCE(SUM(o.total_amount), 0) DESC, a.name`,
		entity.OrderStatusCancelled, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("agent performance: %w", err)
	}
	defer rows.Close()
	var list []repository.AgentPerformanceResult
	for rows.Next() {
		var p repository.AgentPerformanceResult
		if err := rows.Scan(&p.AgentID, &p.AgentName, &p.CommissionRate, &p.Orders, &p.Quantity, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan agent performance: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ProductTypeSales unidades y monto por tipo de producto.
func (r *ReportRepo) ProductTypeSales(ctx context.Context, from, to time.Time) ([]repository.ProductTypeSalesResult, error) {
	rows, err := r.q.QueryRows(ctx, `
		SELECT i.product_type, COALESCE(SUM(i.quantity), 0), COALESCE(SUM(i.line_total), 0)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.status <> ? AND o.created_at >= ? AND o.created_at < ?
		GROUP BY i.product_type
		ORDER BY COALESCE(SUM(i.quantity), 0) DESC, i.product_type`,
		entity.OrderStatusCancelled, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("product type sales: %w", err)
	}
	defer rows.Close()
	var list []repository.ProductTypeSalesResult
	for rows.Next() {
		var p repository.ProductTypeSalesResult
		if err := rows.Scan(&p.ProductType, &p.Quantity, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan product type sales: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// LowStockCount filas de stock en o por debajo del punto de reorden.
func (r *ReportRepo) LowStockCount(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_items WHERE quantity <= reorder_level`).Scan(&n); err != nil {
		return 0, fmt.Errorf("low stock count: %w", err)
	}
	return n, nil
}
