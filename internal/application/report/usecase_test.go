package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/sqlstore"
	"github.com/jhoicas/dresssync-api/internal/testutil"
)

func fixedNow() time.Time { return time.Date(2024, 7, 15, 13, 0, 0, 0, time.UTC) }

// ──────────────────────────────────────────────────────────────────────────────
// Período
// ──────────────────────────────────────────────────────────────────────────────

func TestPeriod_PorDefectoMesEnCurso(t *testing.T) {
	uc := &ReportUseCase{now: fixedNow}
	from, to, err := uc.Period("", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), to, "to es inclusivo: se consulta hasta el día siguiente")
}

func TestPeriod_Errores(t *testing.T) {
	uc := &ReportUseCase{now: fixedNow}
	_, _, err := uc.Period("2024/07/01", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = uc.Period("2024-07-10", "2024-07-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	from, to, err := uc.Period("2024-07-10", "2024-07-10")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, to.Sub(from))
}

func TestCommission_Redondeo(t *testing.T) {
	got := Commission(decimal.RequireFromString("333.33"), decimal.RequireFromString("7.5"))
	assert.Equal(t, "25.00", got.StringFixed(2)) // 24.99975
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_AgregaPorAgenteYProducto(t *testing.T) {
	db := testutil.NewDB(t)
	repos := sqlstore.NewRepos(db)
	ctx := context.Background()

	luis := testutil.SeedAgent(t, repos, "Luis", "10")
	testutil.SeedAgent(t, repos, "Marta", "5")

	at := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	mk := func(status string, qty int, amount string) {
		o := &entity.Order{
			ID: uuid.New().String(), OrderNo: "DS-" + uuid.New().String()[:8], AgentID: luis.ID,
			CustomerName: "Cliente", Status: status, TotalQuantity: qty,
			TotalAmount: decimal.RequireFromString(amount), CreatedAt: at, UpdatedAt: at,
			Items: []entity.OrderItem{{
				ID: uuid.New().String(), ProductType: "Polo", Color: "Red", Size: "M", Quantity: qty,
				UnitPrice: decimal.RequireFromString(amount).Div(decimal.NewFromInt(int64(qty))),
				LineTotal: decimal.RequireFromString(amount), CreatedAt: at,
			}},
		}
		require.NoError(t, repos.Orders.Create(ctx, o))
	}
	mk(entity.OrderStatusConfirmed, 2, "40.00")
	mk(entity.OrderStatusPending, 1, "20.00")
	mk(entity.OrderStatusCancelled, 5, "100.00")
	testutil.SeedStock(t, repos, "Polo", "Red", "M", 1, 3)

	uc := NewReportUseCase(sqlstore.NewReportRepository(db))
	uc.now = fixedNow

	got, err := uc.Summary(ctx, testutil.Manager(), "2024-07-01", "2024-07-31")
	require.NoError(t, err)

	assert.Equal(t, "2024-07-01", got.From)
	assert.Equal(t, "2024-07-31", got.To)
	assert.Equal(t, 2, got.Totals.Orders)
	assert.Equal(t, 3, got.Totals.Quantity)
	assert.Equal(t, "60.00", got.Totals.Amount.StringFixed(2))
	assert.Equal(t, 1, got.StatusCounts[entity.OrderStatusCancelled])
	assert.Equal(t, 0, got.StatusCounts[entity.OrderStatusDelivered])
	assert.Equal(t, 1, got.LowStockCount)

	require.Len(t, got.Agents, 2, "los agentes sin ventas también aparecen")
	var luisRow *struct{ amount, commission string }
	for _, a := range got.Agents {
		if a.AgentID == luis.ID {
			luisRow = &struct{ amount, commission string }{a.Amount.StringFixed(2), a.Commission.StringFixed(2)}
		}
	}
	require.NotNil(t, luisRow)
	assert.Equal(t, "60.00", luisRow.amount)
	assert.Equal(t, "6.00", luisRow.commission)

	require.Len(t, got.ProductTypes, 1)
	assert.Equal(t, "Polo", got.ProductTypes[0].ProductType)
	assert.Equal(t, 3, got.ProductTypes[0].Quantity)

	_, err = uc.Summary(ctx, testutil.AgentActor(luis), "", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
