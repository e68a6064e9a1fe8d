package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite" // driver SQLite en Go puro (sin CGO)

	"github.com/jhoicas/dresssync-api/pkg/config"
)

// sqlExecutor lo implementan *sql.DB y *sql.Tx.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlQuerier struct {
	ex      sqlExecutor
	dialect Dialect
}

func (q sqlQuerier) Dialect() Dialect { return q.dialect }

func (q sqlQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.ex.ExecContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil // algunos drivers no lo informan para DDL
	}
	return n, nil
}

func (q sqlQuerier) QueryRows(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.ex.QueryContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

func (q sqlQuerier) QueryRow(ctx context.Context, query string, args ...any) Row {
	return q.ex.QueryRowContext(ctx, q.dialect.Rebind(query), args...)
}

type sqlRows struct{ rows *sql.Rows }

func (r sqlRows) Next() bool                 { return r.rows.Next() }
func (r sqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r sqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r sqlRows) Err() error                 { return r.rows.Err() }
func (r sqlRows) Close()                     { _ = r.rows.Close() }

// SQLDB conexión MySQL o SQLite sobre database/sql.
type SQLDB struct {
	sqlQuerier
	db *sql.DB
}

var _ DB = (*SQLDB)(nil)

// NewSQLDB envuelve un *sql.DB ya abierto (útil en tests con sqlmock).
func NewSQLDB(db *sql.DB, dialect Dialect) *SQLDB {
	return &SQLDB{sqlQuerier: sqlQuerier{ex: db, dialect: dialect}, db: db}
}

func openMySQL(cfg config.DBConfig) (*SQLDB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		mc.ClientFoundRows = true // filas encontradas, no solo modificadas
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		dsn = mc.FormatDSN()
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir mysql: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return NewSQLDB(db, MySQLDialect{}), nil
}

func openSQLite(cfg config.DBConfig) (*SQLDB, error) {
	path := cfg.Path
	if path == "" {
		path = "dresssync.db"
	}
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("crear directorio de la DB: %w", err)
			}
		}
		if !strings.Contains(path, "?") {
			dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Una sola conexión: SQLite serializa escrituras y ":memory:" es por conexión.
	db.SetMaxOpenConns(1)
	return NewSQLDB(db, SQLiteDialect{}), nil
}

// Ping verifica la conexión.
func (db *SQLDB) Ping(ctx context.Context) error { return db.db.PingContext(ctx) }

// Close cierra la conexión.
func (db *SQLDB) Close() error { return db.db.Close() }

// WithTx inicia una transacción, ejecuta fn con un Querier atado a la tx y hace Commit o Rollback.
func (db *SQLDB) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(sqlQuerier{ex: tx, dialect: db.dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
