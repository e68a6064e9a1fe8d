// Package database es la capa de acceso a datos común a PostgreSQL, MySQL y SQLite:
// abre la conexión según DB_TYPE y expone la misma API Query/Exec/WithTx para los tres.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/dresssync-api/pkg/config"
)

// ErrNoRows se devuelve desde Row.Scan cuando la consulta no encontró filas, sea cual sea el driver.
var ErrNoRows = sql.ErrNoRows

// Row resultado de QueryRow.
type Row interface {
	Scan(dest ...any) error
}

// Rows cursor de resultados.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close()
}

// Querier ejecuta consultas con placeholders "?"; lo implementan la conexión y las transacciones.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRows(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Dialect() Dialect
}

// DB conexión a la base de datos configurada.
type DB interface {
	Querier
	// WithTx ejecuta fn en una transacción: Commit si fn devuelve nil, Rollback en otro caso.
	WithTx(ctx context.Context, fn func(q Querier) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Open abre la conexión según cfg.Type y verifica que responda.
func Open(ctx context.Context, cfg config.DBConfig) (DB, error) {
	dialect, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	var db DB
	switch dialect.Name() {
	case "postgres":
		db, err = openPostgres(ctx, cfg)
	case "mysql":
		db, err = openMySQL(cfg)
	case "sqlite":
		db, err = openSQLite(cfg)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return db, nil
}

// Query ejecuta la consulta y devuelve cada fila como mapa columna -> valor.
// Los []byte se convierten a string para que la salida sea igual en todos los motores.
func Query(ctx context.Context, q Querier, query string, args ...any) ([]map[string]any, error) {
	rows, err := q.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columnas: %w", err)
	}
	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IsNoRows indica si err significa "sin filas".
func IsNoRows(err error) bool {
	return errors.Is(err, ErrNoRows)
}
