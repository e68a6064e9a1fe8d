// Package sqlstore implementa los puertos de repositorio sobre database.Querier,
// con SQL portable entre PostgreSQL, MySQL y SQLite.
package sqlstore

import (
	"context"

	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
)

// NewRepos construye los repositorios sobre q (conexión o transacción).
func NewRepos(q database.Querier) repository.Repos {
	return repository.Repos{
		Users:         NewUserRepository(q),
		Agents:        NewAgentRepository(q),
		Orders:        NewOrderRepository(q),
		Stock:         NewStockRepository(q),
		ProductConfig: NewProductConfigRepository(q),
		Tables:        NewTableRepository(q),
	}
}

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción de la base configurada.
type TxRunner struct {
	db database.DB
}

// NewTxRunner construye el runner con la conexión.
func NewTxRunner(db database.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	return r.db.WithTx(ctx, func(q database.Querier) error {
		return fn(NewRepos(q))
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
