package repository

import (
	"context"

	"github.com/jhoicas/dresssync-api/internal/domain/table"
)

// TableRepository acceso genérico a las tablas del registro (API /api/table).
// Los valores de entrada ya vienen convertidos con table.Coerce.
type TableRepository interface {
	Page(ctx context.Context, def *table.Definition, q table.PageQuery) ([]table.Row, int, error)
	GetByID(ctx context.Context, def *table.Definition, id string, scope table.Scope) (table.Row, error)
	Insert(ctx context.Context, def *table.Definition, values map[string]any) error
	Update(ctx context.Context, def *table.Definition, id string, values map[string]any, scope table.Scope) (int64, error)
	Delete(ctx context.Context, def *table.Definition, id string, scope table.Scope) (int64, error)
}
