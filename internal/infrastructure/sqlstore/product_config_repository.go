package sqlstore

import (
	"context"
	"fmt"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
)

var _ repository.ProductConfigRepository = (*ProductConfigRepo)(nil)

// ProductConfigRepo catálogo configurable (tipos, colores, tallas, cuellos).
type ProductConfigRepo struct {
	q database.Querier
}

// NewProductConfigRepository construye el repositorio del catálogo.
func NewProductConfigRepository(q database.Querier) *ProductConfigRepo {
	return &ProductConfigRepo{q: q}
}

// ListActive devuelve las entradas activas ordenadas por categoría y sort_order.
func (r *ProductConfigRepo) ListActive(ctx context.Context) ([]*entity.ProductConfig, error) {
	rows, err := r.q.QueryRows(ctx, `
		SELECT id, category, value, sort_order, active, created_at, updated_at
		FROM product_config WHERE active = 1
		ORDER BY category, sort_order, value`)
	if err != nil {
		return nil, fmt.Errorf("list product config: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductConfig
	for rows.Next() {
		var c entity.ProductConfig
		var active int
		if err := rows.Scan(&c.ID, &c.Category, &c.Value, &c.SortOrder, &active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product config: %w", err)
		}
		c.Active = active != 0
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Create inserta una entrada del catálogo.
func (r *ProductConfigRepo) Create(ctx context.Context, c *entity.ProductConfig) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_config (id, category, value, sort_order, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Category, c.Value, c.SortOrder, boolToInt(c.Active), c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product config: %w", err)
	}
	return nil
}

// Count total de entradas (activas o no).
func (r *ProductConfigRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM product_config`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count product config: %w", err)
	}
	return n, nil
}
