package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/order"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/sqlstore"
	"github.com/jhoicas/dresssync-api/internal/testutil"
)

type fakeMailer struct {
	sent chan string
}

func (m *fakeMailer) SendOrderCreated(_ context.Context, o *entity.Order, _ *entity.Agent) error {
	m.sent <- o.OrderNo
	return nil
}

type fakePDF struct{}

func (fakePDF) RenderOrder(_ context.Context, o *entity.Order, a *entity.Agent) ([]byte, error) {
	return []byte("%PDF-" + o.OrderNo + "-" + a.Name), nil
}

type fixture struct {
	uc     *order.OrderUseCase
	repos  repository.Repos
	agent  *entity.Agent
	mailer *fakeMailer
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := sqlstore.NewRepos(db)
	mailer := &fakeMailer{sent: make(chan string, 4)}
	uc := order.NewOrderUseCase(sqlstore.NewTxRunner(db), repos.Orders, repos.Agents, repos.ProductConfig, mailer, fakePDF{}, nil)
	return fixture{uc: uc, repos: repos, agent: testutil.SeedAgent(t, repos, "Luis", "5"), mailer: mailer}
}

func sampleRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		CustomerName: "Tienda Central",
		Lines: []dto.OrderLineRequest{
			{ProductType: "polo", Color: "red", UnitPrice: decimal.RequireFromString("10.00"), Sizes: map[string]int{"M": 2, "L": 1}},
			{ProductType: "Hoodie", Color: "Black", NeckType: "round", UnitPrice: decimal.RequireFromString("25.50"), Sizes: map[string]int{"m": 1}},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Get
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_AgenteCreaPedidoPendiente(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	actor := testutil.AgentActor(f.agent)

	in := sampleRequest()
	in.AgentID = "otro-agente" // se ignora para agentes
	resp, err := f.uc.Create(ctx, actor, in)
	require.NoError(t, err)

	assert.Equal(t, f.agent.ID, resp.AgentID)
	assert.Equal(t, entity.OrderStatusPending, resp.Status)
	assert.Equal(t, 4, resp.TotalQuantity)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("55.50")), resp.TotalAmount.String())
	assert.Regexp(t, `^DS-\d{8}-[0-9A-F]{6}$`, resp.OrderNo)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, []dto.SizeTotalResponse{{Size: "M", Quantity: 3}, {Size: "L", Quantity: 1}}, resp.SizeBreakdown)

	select {
	case no := <-f.mailer.sent:
		assert.Equal(t, resp.OrderNo, no)
	case <-time.After(2 * time.Second):
		t.Fatal("no se envió el aviso del pedido")
	}

	got, err := f.uc.Get(ctx, actor, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.OrderNo, got.OrderNo)
	assert.Equal(t, resp.SizeBreakdown, got.SizeBreakdown)
	assert.Equal(t, "Hoodie", got.Items[0].ProductType)
}

func TestCreate_GerenteDebeIndicarAgente(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, testutil.Manager(), sampleRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := sampleRequest()
	in.AgentID = f.agent.ID
	resp, err := f.uc.Create(ctx, testutil.Manager(), in)
	require.NoError(t, err)
	assert.Equal(t, f.agent.ID, resp.AgentID)
}

func TestCreate_SinUnidadesEsInvalido(t *testing.T) {
	f := setup(t)
	in := sampleRequest()
	in.Lines = []dto.OrderLineRequest{{ProductType: "Polo", Color: "Red", Sizes: map[string]int{"M": 0}}}
	_, err := f.uc.Create(context.Background(), testutil.AgentActor(f.agent), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet_OtroAgenteNoVeElPedido(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	resp, err := f.uc.Create(ctx, testutil.AgentActor(f.agent), sampleRequest())
	require.NoError(t, err)

	other := testutil.SeedAgent(t, f.repos, "Marta", "3")
	_, err = f.uc.Get(ctx, testutil.AgentActor(other), resp.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Get(ctx, testutil.Manager(), resp.ID)
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estados y stock
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_ConfirmarSinStockFalla(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	resp, err := f.uc.Create(ctx, testutil.AgentActor(f.agent), sampleRequest())
	require.NoError(t, err)

	testutil.SeedStock(t, f.repos, "Polo", "Red", "M", 1, 0) // requiere 2

	_, err = f.uc.UpdateStatus(ctx, testutil.Manager(), resp.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusConfirmed})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got, err := f.uc.Get(ctx, testutil.Manager(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, got.Status)
	assert.Equal(t, 1, testutil.Qty(t, f.repos, "Polo", "Red", "M"), "no se descuenta nada si falta stock")
}

func TestUpdateStatus_ConfirmarDescuentaYCancelarRepone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	resp, err := f.uc.Create(ctx, testutil.AgentActor(f.agent), sampleRequest())
	require.NoError(t, err)

	testutil.SeedStock(t, f.repos, "Polo", "Red", "M", 10, 2)
	testutil.SeedStock(t, f.repos, "Polo", "Red", "L", 1, 0)
	testutil.SeedStock(t, f.repos, "Hoodie", "Black", "M", 5, 0)

	confirmed, err := f.uc.UpdateStatus(ctx, testutil.Manager(), resp.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, 8, testutil.Qty(t, f.repos, "Polo", "Red", "M"))
	assert.Equal(t, 0, testutil.Qty(t, f.repos, "Polo", "Red", "L"))
	assert.Equal(t, 4, testutil.Qty(t, f.repos, "Hoodie", "Black", "M"))

	_, err = f.uc.UpdateStatus(ctx, testutil.Manager(), resp.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 10, testutil.Qty(t, f.repos, "Polo", "Red", "M"))
	assert.Equal(t, 1, testutil.Qty(t, f.repos, "Polo", "Red", "L"))
	assert.Equal(t, 5, testutil.Qty(t, f.repos, "Hoodie", "Black", "M"))
}

func TestUpdateStatus_TransicionInvalida(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	resp, err := f.uc.Create(ctx, testutil.AgentActor(f.agent), sampleRequest())
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(ctx, testutil.Manager(), resp.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusDelivered})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.uc.UpdateStatus(ctx, testutil.Manager(), resp.ID, dto.UpdateOrderStatusRequest{Status: "archivado"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateStatus_PermisosDeAgente(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	actor := testutil.AgentActor(f.agent)
	resp, err := f.uc.Create(ctx, actor, sampleRequest())
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(ctx, actor, resp.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusConfirmed})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	other := testutil.SeedAgent(t, f.repos, "Marta", "3")
	_, err = f.uc.UpdateStatus(ctx, testutil.AgentActor(other), resp.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCancelled})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cancelled, err := f.uc.UpdateStatus(ctx, actor, resp.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// PDF
// ──────────────────────────────────────────────────────────────────────────────

func TestPDF_NombreDeArchivo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	resp, err := f.uc.Create(ctx, testutil.AgentActor(f.agent), sampleRequest())
	require.NoError(t, err)

	data, name, err := f.uc.PDF(ctx, testutil.Manager(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.OrderNo+".pdf", name)
	assert.Contains(t, string(data), "Luis")
}
