package dto

import "github.com/shopspring/decimal"

// SalesTotalsDTO totales del período (sin pedidos cancelados).
type SalesTotalsDTO struct {
	Orders   int             `json:"orders"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// AgentPerformanceDTO ventas y comisión de un agente.
type AgentPerformanceDTO struct {
	AgentID        string          `json:"agent_id"`
	AgentName      string          `json:"agent_name"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Orders         int             `json:"orders"`
	Quantity       int             `json:"quantity"`
	Amount         decimal.Decimal `json:"amount"`
	Commission     decimal.Decimal `json:"commission"`
}

// ProductTypeSalesDTO ventas por tipo de producto.
type ProductTypeSalesDTO struct {
	ProductType string          `json:"product_type"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// ReportSummaryResponse resumen para el tablero del gerente.
type ReportSummaryResponse struct {
	From          string                `json:"from"`
	To            string                `json:"to"`
	Totals        SalesTotalsDTO        `json:"totals"`
	StatusCounts  map[string]int        `json:"status_counts"`
	Agents        []AgentPerformanceDTO `json:"agents"`
	ProductTypes  []ProductTypeSalesDTO `json:"product_types"`
	LowStockCount int                   `json:"low_stock_count"`
}
