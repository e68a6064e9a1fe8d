package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "$0.00",
		"12.5":      "$12.50",
		"25000":     "$25,000.00",
		"1234567.8": "$1,234,567.80",
		"-1234.5":   "-$1,234.50",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestRenderOrder_GeneraPDF(t *testing.T) {
	o := &entity.Order{
		OrderNo: "DS-20240701-ABC123", CustomerName: "Tienda Central", Status: entity.OrderStatusConfirmed,
		TotalQuantity: 3, TotalAmount: decimal.RequireFromString("45.00"), Notes: "Entregar en la mañana",
		CreatedAt: time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
		Items: []entity.OrderItem{
			{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 2, UnitPrice: decimal.RequireFromString("15"), LineTotal: decimal.RequireFromString("30")},
			{ProductType: "Polo", Color: "Red", Size: "L", Quantity: 1, UnitPrice: decimal.RequireFromString("15"), LineTotal: decimal.RequireFromString("15")},
		},
	}
	data, err := NewOrderReceiptGenerator("").RenderOrder(context.Background(), o, &entity.Agent{Name: "Luis"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "la salida debe ser un PDF")

	data, err = NewOrderReceiptGenerator("Confecciones").RenderOrder(context.Background(), o, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
