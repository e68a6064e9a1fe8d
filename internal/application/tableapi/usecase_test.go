package tableapi

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/domain/table"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/sqlstore"
	"github.com/jhoicas/dresssync-api/internal/testutil"
)

type fixture struct {
	uc    *TableUseCase
	repos repository.Repos
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := sqlstore.NewRepos(db)
	return fixture{uc: NewTableUseCase(repos.Tables, sqlstore.NewTxRunner(db)), repos: repos}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedOrder guarda un pedido con sus ítems tal cual, sin tocar stock.
func seedOrder(t *testing.T, repos repository.Repos, agentID, status string, items ...entity.OrderItem) *entity.Order {
	t.Helper()
	now := time.Now().UTC()
	o := &entity.Order{
		ID: uuid.New().String(), OrderNo: "DS-" + uuid.New().String()[:8], AgentID: agentID,
		CustomerName: "Cliente", Status: status, CreatedAt: now, UpdatedAt: now,
	}
	for _, it := range items {
		it.ID = uuid.New().String()
		it.CreatedAt = now
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		o.Items = append(o.Items, it)
		o.TotalQuantity += it.Quantity
		o.TotalAmount = o.TotalAmount.Add(it.LineTotal)
	}
	require.NoError(t, repos.Orders.Create(context.Background(), o))
	return o
}

func loadOrder(t *testing.T, repos repository.Repos, id string) *entity.Order {
	t.Helper()
	o, err := repos.Orders.GetByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

func isValidation(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr)
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestPermisos_PorRol(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := testutil.AgentActor(testutil.SeedAgent(t, f.repos, "Luis", "5"))

	_, err := f.uc.Page(ctx, agent, table.IDUsers, dto.TablePageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden, "un agente no lee usuarios")

	_, err = f.uc.Create(ctx, agent, table.IDStockItems, dto.TableCreateRequest{
		Data: map[string]any{"product_type": "Polo", "color": "Red", "size": "M"},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden, "un agente no escribe stock")

	_, err = f.uc.Delete(ctx, testutil.Manager(), table.IDMigrations, dto.TableDeleteRequest{ID: "001_schema.sql"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "migrations es de solo lectura")

	_, err = f.uc.Page(ctx, agent, 42, dto.TablePageRequest{})
	assert.ErrorIs(t, err, domain.ErrTableNotFound)

	page, err := f.uc.Page(ctx, agent, table.IDProductConfig, dto.TablePageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Paginación
// ──────────────────────────────────────────────────────────────────────────────

func TestPage_ValoresPorDefectoYOrdenDescendente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mgr := testutil.Manager()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, v := range []string{"Red", "Blue", "Green"} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.uc.now = func() time.Time { return at }
		_, err := f.uc.Create(ctx, mgr, table.IDProductConfig, dto.TableCreateRequest{
			Data: map[string]any{"category": "color", "value": v},
		})
		require.NoError(t, err)
	}

	page, err := f.uc.Page(ctx, mgr, table.IDProductConfig, dto.TablePageRequest{})
	require.NoError(t, err)
	assert.Equal(t, table.DefaultPageSize, page.PageSize)
	assert.Equal(t, 1, page.PageNo)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "Green", fmt.Sprint(page.Data[0]["value"]), "created_at desc por defecto")

	page, err = f.uc.Page(ctx, mgr, table.IDProductConfig, dto.TablePageRequest{PageSize: 500, OrderBy: "value", OrderDir: "asc"})
	require.NoError(t, err)
	assert.Equal(t, table.MaxPageSize, page.PageSize)
	assert.Equal(t, "Blue", fmt.Sprint(page.Data[0]["value"]))

	page, err = f.uc.Page(ctx, mgr, table.IDProductConfig, dto.TablePageRequest{PageSize: 2, PageNo: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios: contraseña y ficha de agente
// ──────────────────────────────────────────────────────────────────────────────

func TestUsuarios_PasswordSeHasheaYValidaLongitud(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mgr := testutil.Manager()

	_, err := f.uc.Create(ctx, mgr, table.IDUsers, dto.TableCreateRequest{Data: map[string]any{
		"email": "corto@example.com", "name": "Corto", "role": "manager", "password": "1234",
	}})
	assert.True(t, isValidation(err), "password de menos de 8 caracteres")

	created, err := f.uc.Create(ctx, mgr, table.IDUsers, dto.TableCreateRequest{Data: map[string]any{
		"email": " Gerente@Example.com ", "name": "Gerente", "role": "manager", "password": "secreto123",
	}})
	require.NoError(t, err)
	_, exposed := created.Data["password_hash"]
	assert.False(t, exposed, "el hash nunca se devuelve")
	id := fmt.Sprint(created.Data["id"])

	u, err := f.repos.Users.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "gerente@example.com", u.Email)
	assert.NotEqual(t, "secreto123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secreto123")))

	_, err = f.uc.Update(ctx, mgr, table.IDUsers, dto.TableUpdateRequest{ID: id, Data: map[string]any{"password": "corta"}})
	assert.True(t, isValidation(err))

	_, err = f.uc.Update(ctx, mgr, table.IDUsers, dto.TableUpdateRequest{ID: id, Data: map[string]any{"password": "otraClave99"}})
	require.NoError(t, err)
	u, _ = f.repos.Users.GetByID(ctx, id)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("otraClave99")))
}

func TestUsuarios_AgenteNuevoQuedaLigadoASuFicha(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mgr := testutil.Manager()

	created, err := f.uc.Create(ctx, mgr, table.IDUsers, dto.TableCreateRequest{Data: map[string]any{
		"email": "vendedora@example.com", "name": "Vendedora", "role": "agent", "password": "secreto123",
	}})
	require.NoError(t, err)

	agentID := fmt.Sprint(created.Data["agent_id"])
	require.NotEmpty(t, agentID)
	agent, err := f.repos.Agents.GetByID(ctx, agentID)
	require.NoError(t, err)
	require.NotNil(t, agent)
	assert.Equal(t, "Vendedora", agent.Name)
	assert.True(t, agent.Active)

	_, err = f.uc.Create(ctx, mgr, table.IDUsers, dto.TableCreateRequest{Data: map[string]any{
		"email": "fantasma@example.com", "name": "Fantasma", "role": "agent", "password": "secreto123",
		"agent_id": "no-existe",
	}})
	assert.True(t, isValidation(err), "agent_id debe apuntar a una ficha existente")
}

func TestUsuarios_CambioARolAgenteCreaFicha(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mgr := testutil.Manager()

	created, err := f.uc.Create(ctx, mgr, table.IDUsers, dto.TableCreateRequest{Data: map[string]any{
		"email": "ex-gerente@example.com", "name": "Ex Gerente", "role": "manager", "password": "secreto123",
	}})
	require.NoError(t, err)
	id := fmt.Sprint(created.Data["id"])
	assert.Equal(t, "", fmt.Sprint(created.Data["agent_id"]))

	_, err = f.uc.Update(ctx, mgr, table.IDUsers, dto.TableUpdateRequest{ID: id, Data: map[string]any{"role": "agent"}})
	require.NoError(t, err)

	u, err := f.repos.Users.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, u.AgentID)
	agent, err := f.repos.Agents.GetByID(ctx, u.AgentID)
	require.NoError(t, err)
	require.NotNil(t, agent)
	assert.Equal(t, "Ex Gerente", agent.Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update: campos no modificables
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_IgnoraIDYCreatedAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mgr := testutil.Manager()

	created, err := f.uc.Create(ctx, mgr, table.IDProductConfig, dto.TableCreateRequest{
		Data: map[string]any{"category": "size", "value": "M"},
	})
	require.NoError(t, err)
	id := fmt.Sprint(created.Data["id"])

	updated, err := f.uc.Update(ctx, mgr, table.IDProductConfig, dto.TableUpdateRequest{ID: id, Data: map[string]any{
		"id": "otro-id", "created_at": "2001-01-01T00:00:00Z", "value": "L",
	}})
	require.NoError(t, err)
	assert.Equal(t, id, fmt.Sprint(updated.Data["id"]))
	assert.Equal(t, "L", fmt.Sprint(updated.Data["value"]))
	assert.NotContains(t, fmt.Sprint(updated.Data["created_at"]), "2001")

	_, err = f.uc.Update(ctx, mgr, table.IDProductConfig, dto.TableUpdateRequest{ID: "no-existe", Data: map[string]any{"value": "S"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Update(ctx, mgr, table.IDProductConfig, dto.TableUpdateRequest{ID: id, Data: map[string]any{"inventado": 1}})
	assert.True(t, isValidation(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos e ítems por la API genérica
// ──────────────────────────────────────────────────────────────────────────────

func TestPedidos_AgenteCreaPendienteConTotalesDerivados(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := testutil.SeedAgent(t, f.repos, "Luis", "5")
	agent := testutil.AgentActor(a)

	_, err := f.uc.Create(ctx, agent, table.IDOrders, dto.TableCreateRequest{Data: map[string]any{
		"customer_name": "Tienda Sur", "total_amount": "999999",
	}})
	assert.True(t, isValidation(err), "los totales no se escriben a mano")

	created, err := f.uc.Create(ctx, agent, table.IDOrders, dto.TableCreateRequest{Data: map[string]any{
		"customer_name": "Tienda Sur", "agent_id": "otro-agente",
	}})
	require.NoError(t, err)
	orderID := fmt.Sprint(created.Data["id"])

	o := loadOrder(t, f.repos, orderID)
	assert.Equal(t, a.ID, o.AgentID)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, 0, o.TotalQuantity)

	item, err := f.uc.Create(ctx, agent, table.IDOrderItems, dto.TableCreateRequest{Data: map[string]any{
		"order_id": orderID, "product_type": "polo", "color": " red ", "size": "m", "quantity": 2, "unit_price": "10.50",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Polo", fmt.Sprint(item.Data["product_type"]))
	assert.Equal(t, "M", fmt.Sprint(item.Data["size"]))

	o = loadOrder(t, f.repos, orderID)
	assert.Equal(t, 2, o.TotalQuantity)
	assert.True(t, o.TotalAmount.Equal(dec("21")), o.TotalAmount.String())

	itemID := fmt.Sprint(item.Data["id"])
	_, err = f.uc.Update(ctx, agent, table.IDOrderItems, dto.TableUpdateRequest{ID: itemID, Data: map[string]any{"quantity": 3}})
	require.NoError(t, err)
	o = loadOrder(t, f.repos, orderID)
	assert.Equal(t, 3, o.TotalQuantity)
	assert.True(t, o.TotalAmount.Equal(dec("31.5")), o.TotalAmount.String())

	_, err = f.uc.Delete(ctx, agent, table.IDOrderItems, dto.TableDeleteRequest{ID: itemID})
	require.NoError(t, err)
	o = loadOrder(t, f.repos, orderID)
	assert.Equal(t, 0, o.TotalQuantity)
	assert.True(t, o.TotalAmount.IsZero())
}

func TestPedidos_EstadoYTotalesNoSeEditanPorTabla(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := testutil.SeedAgent(t, f.repos, "Luis", "5")
	o := seedOrder(t, f.repos, a.ID, entity.OrderStatusConfirmed,
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 2, UnitPrice: dec("10")})

	for _, actor := range []entity.Actor{testutil.AgentActor(a), testutil.Manager()} {
		_, err := f.uc.Update(ctx, actor, table.IDOrders, dto.TableUpdateRequest{ID: o.ID, Data: map[string]any{"total_amount": "999999"}})
		assert.True(t, isValidation(err))

		_, err = f.uc.Update(ctx, actor, table.IDOrders, dto.TableUpdateRequest{ID: o.ID, Data: map[string]any{"status": "delivered"}})
		assert.True(t, isValidation(err))
	}

	// los datos del cliente sí se pueden corregir
	_, err := f.uc.Update(ctx, testutil.AgentActor(a), table.IDOrders, dto.TableUpdateRequest{ID: o.ID, Data: map[string]any{"customer_phone": "555-0101"}})
	require.NoError(t, err)

	got := loadOrder(t, f.repos, o.ID)
	assert.Equal(t, entity.OrderStatusConfirmed, got.Status)
	assert.True(t, got.TotalAmount.Equal(dec("20")))
	assert.Equal(t, "555-0101", got.CustomerPhone)
}

func TestItems_SoloEnPedidosPendientesYPropios(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := testutil.SeedAgent(t, f.repos, "Luis", "5")
	other := testutil.SeedAgent(t, f.repos, "Eva", "5")
	agent := testutil.AgentActor(a)

	ajeno := seedOrder(t, f.repos, other.ID, entity.OrderStatusPending)
	_, err := f.uc.Create(ctx, agent, table.IDOrderItems, dto.TableCreateRequest{Data: map[string]any{
		"order_id": ajeno.ID, "product_type": "Polo", "color": "Red", "size": "M", "quantity": 1, "unit_price": "5",
	}})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	confirmed := seedOrder(t, f.repos, a.ID, entity.OrderStatusConfirmed,
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 1, UnitPrice: dec("5")})
	for _, actor := range []entity.Actor{agent, testutil.Manager()} {
		_, err = f.uc.Create(ctx, actor, table.IDOrderItems, dto.TableCreateRequest{Data: map[string]any{
			"order_id": confirmed.ID, "product_type": "Polo", "color": "Red", "size": "L", "quantity": 1, "unit_price": "5",
		}})
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = f.uc.Update(ctx, actor, table.IDOrderItems, dto.TableUpdateRequest{ID: confirmed.Items[0].ID, Data: map[string]any{"quantity": 9}})
		assert.ErrorIs(t, err, domain.ErrConflict)
	}

	got := loadOrder(t, f.repos, confirmed.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestBorrarPedido_PendienteBorraSusItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := testutil.SeedAgent(t, f.repos, "Luis", "5")
	agent := testutil.AgentActor(a)
	o := seedOrder(t, f.repos, a.ID, entity.OrderStatusPending,
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 2, UnitPrice: dec("10")},
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "L", Quantity: 1, UnitPrice: dec("10")})

	_, err := f.uc.Delete(ctx, testutil.AgentActor(testutil.SeedAgent(t, f.repos, "Eva", "5")), table.IDOrders, dto.TableDeleteRequest{ID: o.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound, "un agente no ve pedidos ajenos")

	resp, err := f.uc.Delete(ctx, agent, table.IDOrders, dto.TableDeleteRequest{ID: o.ID})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Nil(t, loadOrder(t, f.repos, o.ID))

	items, err := f.uc.Page(ctx, testutil.Manager(), table.IDOrderItems, dto.TablePageRequest{
		Where: []table.Condition{{Field: "order_id", Op: "=", Value: o.ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, items.Total)
}

func TestBorrarPedido_ConfirmadoReponeStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := testutil.SeedAgent(t, f.repos, "Luis", "5")
	// stock 5/5 del que ya se descontaron M×2 y L×1 al confirmar
	testutil.SeedStock(t, f.repos, "Polo", "Red", "M", 3, 1)
	testutil.SeedStock(t, f.repos, "Polo", "Red", "L", 4, 1)
	o := seedOrder(t, f.repos, a.ID, entity.OrderStatusConfirmed,
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 2, UnitPrice: dec("10")},
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "L", Quantity: 1, UnitPrice: dec("10")})

	_, err := f.uc.Delete(ctx, testutil.AgentActor(a), table.IDOrders, dto.TableDeleteRequest{ID: o.ID})
	assert.ErrorIs(t, err, domain.ErrConflict, "un agente solo borra pedidos pendientes")
	assert.Equal(t, 3, testutil.Qty(t, f.repos, "Polo", "Red", "M"))

	_, err = f.uc.Delete(ctx, testutil.Manager(), table.IDOrders, dto.TableDeleteRequest{ID: o.ID})
	require.NoError(t, err)
	assert.Nil(t, loadOrder(t, f.repos, o.ID))
	assert.Equal(t, 5, testutil.Qty(t, f.repos, "Polo", "Red", "M"))
	assert.Equal(t, 5, testutil.Qty(t, f.repos, "Polo", "Red", "L"))
}

func TestBorrarPedido_CanceladoNoRepone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := testutil.SeedAgent(t, f.repos, "Luis", "5")
	testutil.SeedStock(t, f.repos, "Polo", "Red", "M", 5, 1)
	o := seedOrder(t, f.repos, a.ID, entity.OrderStatusCancelled,
		entity.OrderItem{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 2, UnitPrice: dec("10")})

	_, err := f.uc.Delete(ctx, testutil.Manager(), table.IDOrders, dto.TableDeleteRequest{ID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, testutil.Qty(t, f.repos, "Polo", "Red", "M"))
}
