package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/sqlstore"
	"github.com/jhoicas/dresssync-api/migrations"
	"github.com/jhoicas/dresssync-api/pkg/config"
)

// newTestDB abre SQLite en memoria con el esquema aplicado.
func newTestDB(t *testing.T) database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DBConfig{Type: config.DBTypeSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.NewMigrator(db, migrations.FS, nil).Up(ctx)
	require.NoError(t, err)
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedAgent(t *testing.T, repos repository.Repos, name, rate string) *entity.Agent {
	t.Helper()
	now := time.Now().UTC()
	a := &entity.Agent{ID: uuid.New().String(), Name: name, CommissionRate: dec(rate), Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Agents.Create(context.Background(), a))
	return a
}

func newOrder(agentID, status string, at time.Time, items ...entity.OrderItem) *entity.Order {
	o := &entity.Order{
		ID: uuid.New().String(), OrderNo: "DS-" + uuid.New().String()[:8], AgentID: agentID,
		CustomerName: "Cliente", Status: status, CreatedAt: at, UpdatedAt: at,
	}
	for _, it := range items {
		it.ID = uuid.New().String()
		it.CreatedAt = at
		o.Items = append(o.Items, it)
		o.TotalQuantity += it.Quantity
		o.TotalAmount = o.TotalAmount.Add(it.LineTotal)
	}
	return o
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestUserRepo_CrearYBuscar(t *testing.T) {
	ctx := context.Background()
	repos := sqlstore.NewRepos(newTestDB(t))
	now := time.Now().UTC()

	u := &entity.User{ID: uuid.New().String(), Email: "ana@example.com", PasswordHash: "hash", Name: "Ana",
		Role: entity.RoleManager, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Users.Create(ctx, u))

	got, err := repos.Users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, entity.RoleManager, got.Role)

	missing, err := repos.Users.GetByID(ctx, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := *u
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, repos.Users.Create(ctx, &dup), domain.ErrEmailAlreadyExists)

	n, err := repos.Users.CountByRole(ctx, entity.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos y stock
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderRepo_CrearConItems(t *testing.T) {
	ctx := context.Background()
	repos := sqlstore.NewRepos(newTestDB(t))
	agent := seedAgent(t, repos, "Luis", "5")

	o := newOrder(agent.ID, entity.OrderStatusPending, time.Now().UTC(),
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 2, UnitPrice: dec("10.50"), LineTotal: dec("21.00")},
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "L", Quantity: 1, UnitPrice: dec("10.50"), LineTotal: dec("10.50")},
	)
	require.NoError(t, repos.Orders.Create(ctx, o))

	got, err := repos.Orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.TotalQuantity)
	assert.True(t, got.TotalAmount.Equal(dec("31.50")), got.TotalAmount.String())
	require.Len(t, got.Items, 2)
	for _, it := range got.Items {
		assert.Equal(t, o.ID, it.OrderID)
	}

	require.NoError(t, repos.Orders.UpdateStatus(ctx, o.ID, entity.OrderStatusPending, entity.OrderStatusConfirmed, time.Now()))
	got, _ = repos.Orders.GetByID(ctx, o.ID)
	assert.Equal(t, entity.OrderStatusConfirmed, got.Status)

	assert.ErrorIs(t, repos.Orders.UpdateStatus(ctx, "nope", entity.OrderStatusPending, entity.OrderStatusShipped, time.Now()), domain.ErrNotFound)
}

func TestOrderRepo_UpdateStatusSoloDesdeEstadoEsperado(t *testing.T) {
	ctx := context.Background()
	repos := sqlstore.NewRepos(newTestDB(t))
	agent := seedAgent(t, repos, "Luis", "5")
	o := newOrder(agent.ID, entity.OrderStatusPending, time.Now().UTC(),
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 1, UnitPrice: dec("10"), LineTotal: dec("10")})
	require.NoError(t, repos.Orders.Create(ctx, o))

	require.NoError(t, repos.Orders.UpdateStatus(ctx, o.ID, entity.OrderStatusPending, entity.OrderStatusConfirmed, time.Now()))

	// un segundo cambio que todavía cree que el pedido está pendiente no debe pisar el estado
	err := repos.Orders.UpdateStatus(ctx, o.ID, entity.OrderStatusPending, entity.OrderStatusCancelled, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := repos.Orders.GetByIDForUpdate(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, got.Status)
}

func TestOrderRepo_RefreshTotalsYDelete(t *testing.T) {
	ctx := context.Background()
	repos := sqlstore.NewRepos(newTestDB(t))
	agent := seedAgent(t, repos, "Luis", "5")
	o := newOrder(agent.ID, entity.OrderStatusPending, time.Now().UTC(),
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 2, UnitPrice: dec("10"), LineTotal: dec("20")},
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "L", Quantity: 1, UnitPrice: dec("10"), LineTotal: dec("10")})
	o.TotalQuantity, o.TotalAmount = 99, dec("999")
	require.NoError(t, repos.Orders.Create(ctx, o))

	require.NoError(t, repos.Orders.RefreshTotals(ctx, o.ID, time.Now()))
	got, _ := repos.Orders.GetByID(ctx, o.ID)
	assert.Equal(t, 3, got.TotalQuantity)
	assert.True(t, got.TotalAmount.Equal(dec("30")), got.TotalAmount.String())

	require.NoError(t, repos.Orders.Delete(ctx, o.ID))
	got, err := repos.Orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, repos.Orders.Delete(ctx, o.ID), domain.ErrNotFound)
}

func TestStockRepo_UpsertYStockBajo(t *testing.T) {
	ctx := context.Background()
	repos := sqlstore.NewRepos(newTestDB(t))

	item := &entity.StockItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 10, ReorderLevel: 3}
	require.NoError(t, repos.Stock.Upsert(ctx, item))
	require.NotEmpty(t, item.ID)

	key := entity.StockKey{ProductType: "Polo", Color: "Red", Size: "M"}
	got, err := repos.Stock.GetByKeyForUpdate(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.Quantity)

	got.Quantity = 2
	require.NoError(t, repos.Stock.Upsert(ctx, got))

	low, err := repos.Stock.ListLow(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, 2, low[0].Quantity)

	none, err := repos.Stock.GetByKey(ctx, entity.StockKey{ProductType: "Polo", Color: "Blue", Size: "M"})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTxRunner_RollbackEnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	runner := sqlstore.NewTxRunner(db)
	boom := errors.New("boom")

	err := runner.Run(ctx, func(r repository.Repos) error {
		if err := r.Stock.Upsert(ctx, &entity.StockItem{ProductType: "Polo", Color: "Red", Size: "S", Quantity: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := sqlstore.NewStockRepository(db).GetByKey(ctx, entity.StockKey{ProductType: "Polo", Color: "Red", Size: "S"})
	require.NoError(t, err)
	assert.Nil(t, got, "el insert debe revertirse")
}

func TestProductConfigRepo(t *testing.T) {
	ctx := context.Background()
	repos := sqlstore.NewRepos(newTestDB(t))
	now := time.Now().UTC()
	for i, v := range []string{"S", "M"} {
		require.NoError(t, repos.ProductConfig.Create(ctx, &entity.ProductConfig{
			ID: uuid.New().String(), Category: entity.ConfigSize, Value: v, SortOrder: i, Active: true, CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, repos.ProductConfig.Create(ctx, &entity.ProductConfig{
		ID: uuid.New().String(), Category: entity.ConfigColor, Value: "Green", Active: false, CreatedAt: now, UpdatedAt: now,
	}))
	err := repos.ProductConfig.Create(ctx, &entity.ProductConfig{
		ID: uuid.New().String(), Category: entity.ConfigSize, Value: "S", Active: true, CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	active, err := repos.ProductConfig.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "S", active[0].Value)

	n, err := repos.ProductConfig.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestReportRepo_Agregados(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repos := sqlstore.NewRepos(db)
	reports := sqlstore.NewReportRepository(db)

	ana := seedAgent(t, repos, "Ana", "10")
	seedAgent(t, repos, "Beto", "5")

	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	polo := entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 4, UnitPrice: dec("25"), LineTotal: dec("100")}
	tee := entity.OrderItem{ProductType: "T-Shirt", Color: "Red", Size: "S", Quantity: 1, UnitPrice: dec("50"), LineTotal: dec("50")}

	require.NoError(t, repos.Orders.Create(ctx, newOrder(ana.ID, entity.OrderStatusConfirmed, day, polo, tee)))
	require.NoError(t, repos.Orders.Create(ctx, newOrder(ana.ID, entity.OrderStatusCancelled, day, polo)))
	// fuera del rango
	require.NoError(t, repos.Orders.Create(ctx, newOrder(ana.ID, entity.OrderStatusPending, day.AddDate(0, 1, 0), polo)))

	from, to := day.AddDate(0, 0, -1), day.AddDate(0, 0, 1)

	totals, err := reports.SalesTotals(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Orders)
	assert.Equal(t, 5, totals.Quantity)
	assert.True(t, totals.Amount.Equal(dec("150")), totals.Amount.String())

	counts, err := reports.StatusCounts(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[entity.OrderStatusConfirmed])
	assert.Equal(t, 1, counts[entity.OrderStatusCancelled])
	assert.Equal(t, 0, counts[entity.OrderStatusPending])

	perf, err := reports.AgentPerformance(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, perf, 2, "los agentes sin ventas también aparecen")
	assert.Equal(t, "Ana", perf[0].AgentName)
	assert.Equal(t, 1, perf[0].Orders)
	assert.True(t, perf[0].Amount.Equal(dec("150")))
	assert.Equal(t, 0, perf[1].Orders)

	byType, err := reports.ProductTypeSales(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, byType, 2)
	assert.Equal(t, "Polo", byType[0].ProductType)
	assert.Equal(t, 4, byType[0].Quantity)

	// sin datos: COALESCE evita NULL
	empty, err := reports.SalesTotals(ctx, day.AddDate(-1, 0, 0), day.AddDate(-1, 0, 1))
	require.NoError(t, err)
	assert.True(t, empty.Amount.IsZero())
}
