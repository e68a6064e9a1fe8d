// Package migrations contiene los scripts SQL embebidos en el binario.
// Se pueden reemplazar en tiempo de ejecución con MIGRATIONS_DIR.
package migrations

import (
	"embed"
	"io/fs"
	"os"
)

// FS scripts *.sql (ver database.Migrator para las reglas de nombres).
//
//go:embed *.sql
var FS embed.FS

// Source devuelve dir si está definido; si no, los scripts embebidos.
func Source(dir string) fs.FS {
	if dir == "" {
		return FS
	}
	return os.DirFS(dir)
}
