package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jhoicas/dresssync-api/internal/application/ports"
)

var _ ports.FileStorage = (*LocalStorage)(nil)

// LocalStorage escribe en un directorio servido como estático bajo publicPath.
type LocalStorage struct {
	dir        string
	publicPath string
}

// NewLocalStorage crea el directorio si no existe.
func NewLocalStorage(dir, publicPath string) (*LocalStorage, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir, publicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

// Dir directorio raíz de los archivos.
func (s *LocalStorage) Dir() string { return s.dir }

// Save copia r a dir/name y devuelve publicPath/name.
func (s *LocalStorage) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("storage: nombre de archivo inválido")
	}
	dst := filepath.Join(s.dir, name)
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: crear archivo: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("storage: escribir archivo: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: cerrar archivo: %w", err)
	}
	return path.Join(s.publicPath, name), nil
}
