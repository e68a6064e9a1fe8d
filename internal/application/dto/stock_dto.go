package dto

import "time"

// AdjustStockRequest suma Delta (puede ser negativo) a la fila tipo+color+talla.
type AdjustStockRequest struct {
	ProductType  string `json:"product_type" validate:"required,max=100"`
	Color        string `json:"color" validate:"required,max=100"`
	Size         string `json:"size" validate:"required,max=20"`
	Delta        int    `json:"delta"`
	ReorderLevel *int   `json:"reorder_level" validate:"omitempty,gte=0"`
}

// StockItemResponse fila de stock.
type StockItemResponse struct {
	ID           string    `json:"id"`
	ProductType  string    `json:"product_type"`
	Color        string    `json:"color"`
	Size         string    `json:"size"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorder_level"`
	Low          bool      `json:"low"`
	UpdatedAt    time.Time `json:"updated_at"`
}
