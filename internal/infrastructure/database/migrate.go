package database

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS migrations (
	name VARCHAR(255) NOT NULL PRIMARY KEY,
	executed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Migrator aplica los archivos .sql de fsys en orden lexicográfico y registra cada uno
// en la tabla migrations. Un archivo "nombre.<motor>.sql" solo se aplica en ese motor.
type Migrator struct {
	db   DB
	fsys fs.FS
	log  *logger.Logger
}

// NewMigrator crea el runner. log puede ser nil.
func NewMigrator(db DB, fsys fs.FS, log *logger.Logger) *Migrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Migrator{db: db, fsys: fsys, log: log}
}

// Files archivos de migración que aplican al motor actual, ordenados.
func (m *Migrator) Files() ([]string, error) {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}
	engine := m.db.Dialect().Name()
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if target := dialectSuffix(name); target != "" && target != engine {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// dialectSuffix devuelve "postgres" para "001_x.postgres.sql"; vacío si el archivo es común.
func dialectSuffix(name string) string {
	base := strings.TrimSuffix(name, ".sql")
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return ""
	}
	switch s := base[i+1:]; s {
	case "postgres", "mysql", "sqlite":
		return s
	}
	return ""
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("crear tabla migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]time.Time, error) {
	rows, err := m.db.QueryRows(ctx, "SELECT name, executed_at FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("leer migrations: %w", err)
	}
	defer rows.Close()
	out := map[string]time.Time{}
	for rows.Next() {
		var name string
		var at time.Time
		if err := rows.Scan(&name, &at); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		out[name] = at
	}
	return out, rows.Err()
}

// Status lista los archivos conocidos indicando si ya se ejecutaron.
func (m *Migrator) Status(ctx context.Context) ([]entity.Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	files, err := m.Files()
	if err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Migration, 0, len(files))
	for _, f := range files {
		at, ok := done[f]
		out = append(out, entity.Migration{Name: f, Executed: ok, ExecutedAt: at})
	}
	return out, nil
}

// Up aplica las migraciones pendientes, cada una en su propia transacción.
// Devuelve los nombres aplicados; si una falla se detiene y las anteriores quedan registradas.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}
	var ran []string
	for _, s := range status {
		if s.Executed {
			continue
		}
		if err := m.apply(ctx, s.Name); err != nil {
			return ran, err
		}
		m.log.Info().Str("migration", s.Name).Msg("migración aplicada")
		ran = append(ran, s.Name)
	}
	if len(ran) == 0 {
		m.log.Debug().Msg("sin migraciones pendientes")
	}
	return ran, nil
}

func (m *Migrator) apply(ctx context.Context, name string) error {
	body, err := fs.ReadFile(m.fsys, name)
	if err != nil {
		return fmt.Errorf("leer %s: %w", name, err)
	}
	stmts, err := SplitStatements(string(body))
	if err != nil {
		return fmt.Errorf("leer %s: %w", name, err)
	}
	return m.db.WithTx(ctx, func(q Querier) error {
		for i, stmt := range stmts {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migración %s (sentencia %d): %w", name, i+1, err)
			}
		}
		if _, err := q.Exec(ctx, "INSERT INTO migrations (name, executed_at) VALUES (?, ?)", name, time.Now().UTC()); err != nil {
			return fmt.Errorf("registrar migración %s: %w", name, err)
		}
		return nil
	})
}

// SplitStatements separa un script en sentencias: una sentencia termina en ";" al final
// de línea; las líneas que empiezan con "--" se ignoran. Falla si una línea supera 1 MiB.
func SplitStatements(script string) ([]string, error) {
	var (
		out []string
		cur strings.Builder
	)
	sc := bufio.NewScanner(strings.NewReader(script))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				out = append(out, stmt)
			}
			cur.Reset()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out, nil
}
