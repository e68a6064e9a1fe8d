package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Agent representa un vendedor que crea pedidos de clientes.
type Agent struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Region         string
	CommissionRate decimal.Decimal // porcentaje sobre el monto vendido (ej. 5 = 5%)
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
