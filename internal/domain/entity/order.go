package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses todos los estados en orden de ciclo de vida.
var OrderStatuses = []string{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// Order pedido de un cliente creado por un agente. Los totales se derivan de Items.
type Order struct {
	ID              string
	OrderNo         string
	AgentID         string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Status          string
	TotalQuantity   int
	TotalAmount     decimal.Decimal
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []OrderItem
}

// CanTransitionTo indica si el pedido puede pasar al estado next.
func (o *Order) CanTransitionTo(next string) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// HoldsStock indica si el pedido tiene stock descontado (confirmado o posterior, no cancelado).
func (o *Order) HoldsStock() bool {
	switch o.Status {
	case OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// OrderItem línea de pedido: una talla de un producto (tipo + color + cuello).
type OrderItem struct {
	ID          string
	OrderID     string
	ProductType string
	Color       string
	NeckType    string
	Size        string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
}
