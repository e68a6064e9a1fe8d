package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect abstrae las diferencias de sintaxis SQL entre motores.
// Las consultas se escriben con placeholders "?" y se reescriben con Rebind.
type Dialect interface {
	// Name devuelve el nombre del motor ("postgres", "mysql", "sqlite").
	Name() string
	// Placeholder devuelve el placeholder para el índice (base 1).
	Placeholder(index int) string
	// Rebind reescribe los "?" de la consulta al estilo del motor.
	Rebind(query string) string
	// QuoteIdent cita un identificador (tabla o columna).
	QuoteIdent(name string) string
	// LimitOffset devuelve la cláusula LIMIT/OFFSET.
	LimitOffset(limit, offset int) string
	// ForUpdate cláusula de bloqueo de fila; vacío si el motor no la soporta.
	ForUpdate() string
	// LowerLike comparación LIKE sin distinguir mayúsculas sobre col.
	LowerLike(col string) string
}

// DialectFor devuelve el dialecto para el tipo de base de datos.
func DialectFor(dbType string) (Dialect, error) {
	switch strings.ToLower(dbType) {
	case "postgres", "postgresql":
		return PostgresDialect{}, nil
	case "mysql", "mariadb":
		return MySQLDialect{}, nil
	case "sqlite", "sqlite3":
		return SQLiteDialect{}, nil
	}
	return nil, fmt.Errorf("tipo de base de datos no soportado: %q (soportados: postgres, mysql, sqlite)", dbType)
}

func limitOffset(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	if offset <= 0 {
		return fmt.Sprintf("LIMIT %d", limit)
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

func quoteWith(name, q string) string {
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// PostgresDialect dialecto de PostgreSQL ($1, $2...).
type PostgresDialect struct{}

var _ Dialect = PostgresDialect{}

func (PostgresDialect) Name() string                         { return "postgres" }
func (PostgresDialect) Placeholder(index int) string         { return "$" + strconv.Itoa(index) }
func (PostgresDialect) Rebind(query string) string           { return ConvertPlaceholders(query) }
func (PostgresDialect) QuoteIdent(name string) string        { return quoteWith(name, `"`) }
func (PostgresDialect) LimitOffset(limit, offset int) string { return limitOffset(limit, offset) }
func (PostgresDialect) ForUpdate() string                    { return "FOR UPDATE" }
func (PostgresDialect) LowerLike(col string) string          { return "CAST(" + col + " AS TEXT) ILIKE ?" }

// MySQLDialect dialecto de MySQL/MariaDB.
type MySQLDialect struct{}

var _ Dialect = MySQLDialect{}

func (MySQLDialect) Name() string                         { return "mysql" }
func (MySQLDialect) Placeholder(int) string               { return "?" }
func (MySQLDialect) Rebind(query string) string           { return query }
func (MySQLDialect) QuoteIdent(name string) string        { return quoteWith(name, "`") }
func (MySQLDialect) LimitOffset(limit, offset int) string { return limitOffset(limit, offset) }
func (MySQLDialect) ForUpdate() string                    { return "FOR UPDATE" }
func (MySQLDialect) LowerLike(col string) string          { return "LOWER(" + col + ") LIKE LOWER(?)" }

// SQLiteDialect dialecto de SQLite.
type SQLiteDialect struct{}

var _ Dialect = SQLiteDialect{}

func (SQLiteDialect) Name() string                         { return "sqlite" }
func (SQLiteDialect) Placeholder(int) string               { return "?" }
func (SQLiteDialect) Rebind(query string) string           { return query }
func (SQLiteDialect) QuoteIdent(name string) string        { return quoteWith(name, `"`) }
func (SQLiteDialect) LimitOffset(limit, offset int) string { return limitOffset(limit, offset) }
func (SQLiteDialect) ForUpdate() string                    { return "" } // SQLite bloquea a nivel de base de datos
func (SQLiteDialect) LowerLike(col string) string          { return "LOWER(" + col + ") LIKE LOWER(?)" }

// ConvertPlaceholders convierte los placeholders "?" en $n (PostgreSQL).
// Los "?" dentro de literales con comilla simple se respetan.
func ConvertPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 10)
	n := 1
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			b.WriteString("$" + strconv.Itoa(n))
			n++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// PlaceholderList genera "?, ?, ?" para cláusulas IN.
func PlaceholderList(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
