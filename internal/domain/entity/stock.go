package entity

import "time"

// StockItem inventario de una combinación tipo de producto + color + talla.
type StockItem struct {
	ID           string
	ProductType  string
	Color        string
	Size         string
	Quantity     int
	ReorderLevel int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockKey identifica una fila de stock.
type StockKey struct {
	ProductType string
	Color       string
	Size        string
}

// Key devuelve la clave de la fila.
func (s *StockItem) Key() StockKey {
	return StockKey{ProductType: s.ProductType, Color: s.Color, Size: s.Size}
}

// IsLow indica si la cantidad está en o por debajo del punto de reorden.
func (s *StockItem) IsLow() bool {
	return s.Quantity <= s.ReorderLevel
}
