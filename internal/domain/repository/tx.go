package repository

import "context"

// Repos repositorios atados a una misma conexión o transacción.
type Repos struct {
	Users         UserRepository
	Agents        AgentRepository
	Orders        OrderRepository
	Stock         StockRepository
	ProductConfig ProductConfigRepository
	Tables        TableRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
// Dentro de fn solo deben usarse los repos recibidos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
