package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, product_type, color, size, quantity, reorder_level, created_at, updated_at`

// StockRepo implementación de StockRepository. Se usa tanto con la conexión como con una tx.
type StockRepo struct {
	q database.Querier
}

// NewStockRepository construye el repo de stock.
func NewStockRepository(q database.Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetByKey obtiene la fila de stock de la combinación; (nil, nil) si no existe.
func (r *StockRepo) GetByKey(ctx context.Context, key entity.StockKey) (*entity.StockItem, error) {
	return r.getByKey(ctx, key, "")
}

// GetByKeyForUpdate obtiene la fila con bloqueo (FOR UPDATE) para descontar stock sin carreras.
func (r *StockRepo) GetByKeyForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockItem, error) {
	return r.getByKey(ctx, key, r.q.Dialect().ForUpdate())
}

func (r *StockRepo) getByKey(ctx context.Context, key entity.StockKey, lock string) (*entity.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE product_type = ? AND color = ? AND size = ?`
	if lock != "" {
		query += " " + lock
	}
	s, err := scanStock(r.q.QueryRow(ctx, query, key.ProductType, key.Color, key.Size))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// Upsert inserta la fila si item.ID está vacío; en otro caso actualiza cantidad y punto de reorden.
func (r *StockRepo) Upsert(ctx context.Context, item *entity.StockItem) error {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.New().String()
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		_, err := r.q.Exec(ctx, `INSERT INTO stock_items (`+stockColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.ProductType, item.Color, item.Size, item.Quantity, item.ReorderLevel,
			item.CreatedAt.UTC(), item.UpdatedAt,
		)
		if err != nil {
			item.ID = ""
			if database.IsUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert stock: %w", err)
		}
		return nil
	}
	item.UpdatedAt = now
	n, err := r.q.Exec(ctx, `UPDATE stock_items SET quantity = ?, reorder_level = ?, updated_at = ? WHERE id = ?`,
		item.Quantity, item.ReorderLevel, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListLow lista las filas en o por debajo de su punto de reorden.
func (r *StockRepo) ListLow(ctx context.Context) ([]*entity.StockItem, error) {
	rows, err := r.q.QueryRows(ctx, `
		SELECT `+stockColumns+` FROM stock_items
		WHERE quantity <= reorder_level
		ORDER BY quantity, product_type, color, size`)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanStock(row database.Row) (*entity.StockItem, error) {
	var s entity.StockItem
	if err := row.Scan(&s.ID, &s.ProductType, &s.Color, &s.Size, &s.Quantity, &s.ReorderLevel,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
