package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesTotals totales de pedidos no cancelados en un período.
type SalesTotals struct {
	Orders   int
	Quantity int
	Amount   decimal.Decimal
}

// AgentPerformanceResult resultado crudo del rendimiento por agente.
// Lo produce la DB; el use case calcula la comisión.
type AgentPerformanceResult struct {
	AgentID        string
	AgentName      string
	CommissionRate decimal.Decimal
	Orders         int
	Quantity       int
	Amount         decimal.Decimal
}

// ProductTypeSalesResult unidades y monto vendidos por tipo de producto.
type ProductTypeSalesResult struct {
	ProductType string
	Quantity    int
	Amount      decimal.Decimal
}

// ReportRepository consultas de solo lectura para los reportes del gerente.
// El rango es [from, to).
type ReportRepository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (SalesTotals, error)
	StatusCounts(ctx context.Context, from, to time.Time) (map[string]int, error)
	AgentPerformance(ctx context.Context, from, to time.Time) ([]AgentPerformanceResult, error)
	ProductTypeSales(ctx context.Context, from, to time.Time) ([]ProductTypeSalesResult, error)
	LowStockCount(ctx context.Context) (int, error)
}
