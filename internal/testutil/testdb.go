// Package testutil helpers compartidos por los tests: base SQLite en memoria con el esquema
// aplicado y datos mínimos.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
	"github.com/jhoicas/dresssync-api/migrations"
	"github.com/jhoicas/dresssync-api/pkg/config"
)

// NewDB abre SQLite en memoria con todas las migraciones aplicadas.
func NewDB(t *testing.T) database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DBConfig{Type: config.DBTypeSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.NewMigrator(db, migrations.FS, nil).Up(ctx)
	require.NoError(t, err)
	return db
}

// SeedAgent crea un agente activo con la tasa de comisión indicada.
func SeedAgent(t *testing.T, repos repository.Repos, name, rate string) *entity.Agent {
	t.Helper()
	now := time.Now().UTC()
	a := &entity.Agent{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          uuid.New().String()[:8] + "@example.com",
		CommissionRate: decimal.RequireFromString(rate),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repos.Agents.Create(context.Background(), a))
	return a
}

// SeedStock deja la fila tipo+color+talla con la cantidad indicada.
func SeedStock(t *testing.T, repos repository.Repos, productType, color, size string, qty, reorder int) {
	t.Helper()
	ctx := context.Background()
	key := entity.StockKey{ProductType: productType, Color: color, Size: size}
	row, err := repos.Stock.GetByKey(ctx, key)
	require.NoError(t, err)
	now := time.Now().UTC()
	if row == nil {
		row = &entity.StockItem{ProductType: productType, Color: color, Size: size, CreatedAt: now}
	}
	row.Quantity = qty
	row.ReorderLevel = reorder
	row.UpdatedAt = now
	require.NoError(t, repos.Stock.Upsert(ctx, row))
}

// Qty cantidad actual de una fila de stock (0 si no existe).
func Qty(t *testing.T, repos repository.Repos, productType, color, size string) int {
	t.Helper()
	row, err := repos.Stock.GetByKey(context.Background(), entity.StockKey{ProductType: productType, Color: color, Size: size})
	require.NoError(t, err)
	if row == nil {
		return 0
	}
	return row.Quantity
}

// Manager actor gerente.
func Manager() entity.Actor {
	return entity.Actor{UserID: uuid.New().String(), Role: entity.RoleManager}
}

// AgentActor actor agente ligado a la ficha a.
func AgentActor(a *entity.Agent) entity.Actor {
	return entity.Actor{UserID: uuid.New().String(), Role: entity.RoleAgent, AgentID: a.ID}
}
