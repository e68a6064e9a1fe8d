package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	for in, want := range map[string]string{
		"postgres": "postgres", "PostgreSQL": "postgres",
		"mysql": "mysql", "mariadb": "mysql",
		"sqlite": "sqlite", "sqlite3": "sqlite",
	} {
		d, err := DialectFor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.Name())
	}

	_, err := DialectFor("oracle")
	assert.Error(t, err)
}

func TestConvertPlaceholders(t *testing.T) {
	got := ConvertPlaceholders("SELECT * FROM t WHERE a = ? AND b = '?' AND c IN (?, ?)")
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = '?' AND c IN ($2, $3)", got)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"order_no"`, PostgresDialect{}.QuoteIdent("order_no"))
	assert.Equal(t, "`order_no`", MySQLDialect{}.QuoteIdent("order_no"))
	assert.Equal(t, `"a""b"`, SQLiteDialect{}.QuoteIdent(`a"b`))
}

func TestLimitOffset(t *testing.T) {
	d := SQLiteDialect{}
	assert.Equal(t, "LIMIT 20", d.LimitOffset(20, 0))
	assert.Equal(t, "LIMIT 20 OFFSET 40", d.LimitOffset(20, 40))
	assert.Equal(t, "", d.LimitOffset(0, 0))
}

func TestPlaceholderList(t *testing.T) {
	assert.Equal(t, "?, ?, ?", PlaceholderList(3))
	assert.Equal(t, "?", PlaceholderList(1))
	assert.Equal(t, "", PlaceholderList(0))
}
