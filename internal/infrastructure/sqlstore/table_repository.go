package sqlstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/domain/table"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
)

var _ repository.TableRepository = (*TableRepo)(nil)

// TableRepo CRUD genérico sobre las tablas del registro. Los identificadores salen siempre
// de la definición de la tabla; los valores van como parámetros.
type TableRepo struct {
	q database.Querier
}

// NewTableRepository construye el repositorio genérico.
func NewTableRepository(q database.Querier) *TableRepo {
	return &TableRepo{q: q}
}

func (r *TableRepo) selectList(def *table.Definition) string {
	d := r.q.Dialect()
	cols := def.Visible()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// Page devuelve una página de filas y el total que cumple el filtro.
func (r *TableRepo) Page(ctx context.Context, def *table.Definition, q table.PageQuery) ([]table.Row, int, error) {
	q.Normalize()
	d := r.q.Dialect()

	where, err := database.BuildWhere(d, def, q.Where, q.Keyword, q.Scope)
	if err != nil {
		return nil, 0, err
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = def.DefaultOrder()
	}
	if !def.HasColumn(orderBy) || def.IsHidden(orderBy) {
		return nil, 0, domain.NewValidationError(fmt.Sprintf("no se puede ordenar por %q", orderBy))
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	tableName := d.QuoteIdent(def.Name)
	var total int
	countSQL := strings.TrimSpace("SELECT COUNT(*) FROM " + tableName + " " + where.SQL)
	if err := r.q.QueryRow(ctx, countSQL, where.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", def.Name, err)
	}

	// desempate por clave primaria para que la paginación sea estable
	order := d.QuoteIdent(orderBy) + " " + dir
	if orderBy != def.PrimaryKey {
		order += ", " + d.QuoteIdent(def.PrimaryKey) + " " + dir
	}
	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY %s %s",
		r.selectList(def), tableName, where.SQL, order, d.LimitOffset(q.PageSize, q.Offset()))
	raw, err := database.Query(ctx, r.q, query, where.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("page %s: %w", def.Name, err)
	}
	rows := make([]table.Row, len(raw))
	for i, m := range raw {
		rows[i] = def.NormalizeRow(m)
	}
	return rows, total, nil
}

// scopedKey condición "pk = ?" más la restricción de dueño si aplica.
func (r *TableRepo) scopedKey(def *table.Definition, id string, scope table.Scope) (string, []any) {
	d := r.q.Dialect()
	cond := d.QuoteIdent(def.PrimaryKey) + " = ?"
	args := []any{id}
	if !scope.Empty() {
		sql, sargs := database.ScopeClause(d, scope)
		cond += " AND " + sql
		args = append(args, sargs...)
	}
	return cond, args
}

// GetByID obtiene una fila; (nil, nil) si no existe o queda fuera del scope.
func (r *TableRepo) GetByID(ctx context.Context, def *table.Definition, id string, scope table.Scope) (table.Row, error) {
	cond, args := r.scopedKey(def, id, scope)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", r.selectList(def), r.q.Dialect().QuoteIdent(def.Name), cond)
	raw, err := database.Query(ctx, r.q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", def.Name, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return def.NormalizeRow(raw[0]), nil
}

// sortedColumns columnas de values que existen en la tabla, en orden estable.
func sortedColumns(def *table.Definition, values map[string]any) ([]string, error) {
	cols := make([]string, 0, len(values))
	for k := range values {
		if !def.HasColumn(k) {
			return nil, domain.NewValidationError(fmt.Sprintf("campo no permitido: %q", k))
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, nil
}

// Insert inserta una fila con los valores ya convertidos.
func (r *TableRepo) Insert(ctx context.Context, def *table.Definition, values map[string]any) error {
	cols, err := sortedColumns(def, values)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return domain.NewValidationError("no hay datos para insertar")
	}
	d := r.q.Dialect()
	quoted := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = d.QuoteIdent(c)
		args[i] = values[c]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(def.Name), strings.Join(quoted, ", "), database.PlaceholderList(len(cols)))
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", def.Name, err)
	}
	return nil
}

// Update actualiza las columnas indicadas; devuelve las filas afectadas (0 si no existe o fuera del scope).
func (r *TableRepo) Update(ctx context.Context, def *table.Definition, id string, values map[string]any, scope table.Scope) (int64, error) {
	cols, err := sortedColumns(def, values)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, domain.NewValidationError("no hay datos para actualizar")
	}
	d := r.q.Dialect()
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+2)
	for i, c := range cols {
		sets[i] = d.QuoteIdent(c) + " = ?"
		args = append(args, values[c])
	}
	cond, kargs := r.scopedKey(def, id, scope)
	args = append(args, kargs...)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", d.QuoteIdent(def.Name), strings.Join(sets, ", "), cond)
	n, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, domain.ErrDuplicate
		}
		return 0, fmt.Errorf("update %s: %w", def.Name, err)
	}
	return n, nil
}

// Delete borra la fila; devuelve las filas afectadas.
func (r *TableRepo) Delete(ctx context.Context, def *table.Definition, id string, scope table.Scope) (int64, error) {
	cond, args := r.scopedKey(def, id, scope)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", r.q.Dialect().QuoteIdent(def.Name), cond)
	n, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", def.Name, err)
	}
	return n, nil
}
