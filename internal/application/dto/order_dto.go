package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest un producto (tipo + color + cuello) con cantidades por talla.
type OrderLineRequest struct {
	ProductType string          `json:"product_type" validate:"required,max=100"`
	Color       string          `json:"color" validate:"required,max=100"`
	NeckType    string          `json:"neck_type" validate:"max=100"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Sizes       map[string]int  `json:"sizes" validate:"required,min=1"`
}

// CreateOrderRequest entrada para crear un pedido. AgentID solo lo usan los gerentes.
type CreateOrderRequest struct {
	AgentID         string             `json:"agent_id" validate:"omitempty,max=36"`
	CustomerName    string             `json:"customer_name" validate:"required,max=255"`
	CustomerPhone   string             `json:"customer_phone" validate:"max=50"`
	CustomerAddress string             `json:"customer_address" validate:"max=500"`
	Notes           string             `json:"notes" validate:"max=1000"`
	Lines           []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest cambio de estado.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// OrderItemResponse línea de pedido por talla.
type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductType string          `json:"product_type"`
	Color       string          `json:"color"`
	NeckType    string          `json:"neck_type"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SizeTotalResponse unidades por talla en todo el pedido.
type SizeTotalResponse struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// OrderResponse pedido con ítems y desglose por talla.
type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNo         string              `json:"order_no"`
	AgentID         string              `json:"agent_id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerAddress string              `json:"customer_address"`
	Status          string              `json:"status"`
	TotalQuantity   int                 `json:"total_quantity"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Notes           string              `json:"notes"`
	Items           []OrderItemResponse `json:"items"`
	SizeBreakdown   []SizeTotalResponse `json:"size_breakdown"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
