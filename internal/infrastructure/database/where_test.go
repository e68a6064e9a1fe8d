package database

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/table"
)

func ordersDef(t *testing.T) *table.Definition {
	t.Helper()
	def, ok := table.Lookup(table.IDOrders)
	require.True(t, ok)
	return def
}

func TestBuildWhere_SinCondiciones(t *testing.T) {
	w, err := BuildWhere(SQLiteDialect{}, ordersDef(t), nil, "", table.Scope{})
	require.NoError(t, err)
	assert.Empty(t, w.SQL)
	assert.Empty(t, w.Args)
}

func TestBuildWhere_Operadores(t *testing.T) {
	conds := []table.Condition{
		{Field: "status", Op: "", Value: "pending"},
		{Field: "total_quantity", Op: ">=", Value: json.Number("5")},
		{Field: "customer_name", Op: "LIKE", Value: "ana"},
		{Field: "status", Op: "not  in", Value: []any{"cancelled", "delivered"}},
		{Field: "notes", Op: "is not null"},
		{Field: "status", Op: "<>", Value: "shipped"},
	}
	w, err := BuildWhere(SQLiteDialect{}, ordersDef(t), conds, "", table.Scope{})
	require.NoError(t, err)

	assert.Equal(t, `WHERE "status" = ? AND "total_quantity" >= ? AND LOWER("customer_name") LIKE LOWER(?)`+
		` AND "status" NOT IN (?, ?) AND "notes" IS NOT NULL AND "status" != ?`, w.SQL)
	assert.Equal(t, []any{"pending", int64(5), "%ana%", "cancelled", "delivered", "shipped"}, w.Args)
}

func TestBuildWhere_LikeRespetaComodines(t *testing.T) {
	w, err := BuildWhere(MySQLDialect{}, ordersDef(t),
		[]table.Condition{{Field: "order_no", Op: "like", Value: "DS-2024%"}}, "", table.Scope{})
	require.NoError(t, err)
	assert.Equal(t, []any{"DS-2024%"}, w.Args)
	assert.Contains(t, w.SQL, "LOWER(`order_no`) LIKE LOWER(?)")
}

func TestBuildWhere_InDesdeTexto(t *testing.T) {
	w, err := BuildWhere(SQLiteDialect{}, ordersDef(t),
		[]table.Condition{{Field: "status", Op: "in", Value: "pending, confirmed"}}, "", table.Scope{})
	require.NoError(t, err)
	assert.Equal(t, []any{"pending", "confirmed"}, w.Args)
}

func TestBuildWhere_CampoNoPermitido(t *testing.T) {
	users, _ := table.Lookup(table.IDUsers)
	_, err := BuildWhere(SQLiteDialect{}, users, []table.Condition{
		{Field: "password_hash", Op: "=", Value: "x"},
		{Field: "id; DROP TABLE users", Op: "=", Value: "x"},
		{Field: "email", Op: "regexp", Value: "x"},
	}, "", table.Scope{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Messages, 3)
}

func TestBuildWhere_ValorInvalido(t *testing.T) {
	_, err := BuildWhere(SQLiteDialect{}, ordersDef(t),
		[]table.Condition{{Field: "total_quantity", Op: ">", Value: "muchos"}}, "", table.Scope{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestBuildWhere_KeywordYScope(t *testing.T) {
	def := ordersDef(t)
	w, err := BuildWhere(PostgresDialect{}, def, nil, " Ana ", def.OwnerScope("agent-1"))
	require.NoError(t, err)
	assert.Equal(t, `WHERE (CAST("order_no" AS TEXT) ILIKE ? OR CAST("customer_name" AS TEXT) ILIKE ?`+
		` OR CAST("customer_phone" AS TEXT) ILIKE ?) AND "agent_id" = ?`, w.SQL)
	assert.Equal(t, []any{"%Ana%", "%Ana%", "%Ana%", "agent-1"}, w.Args)
}

func TestBuildWhere_ScopePorTablaPadre(t *testing.T) {
	items, _ := table.Lookup(table.IDOrderItems)
	w, err := BuildWhere(SQLiteDialect{}, items, nil, "", items.OwnerScope("agent-1"))
	require.NoError(t, err)
	assert.Equal(t, `WHERE "order_id" IN (SELECT "id" FROM "orders" WHERE "agent_id" = ?)`, w.SQL)
	assert.Equal(t, []any{"agent-1"}, w.Args)
}
