// Package ports define los puertos de salida que la capa de aplicación usa para
// servicios externos (correo, archivos, PDF, revocación de tokens, base de datos del instalador). Cada adaptador
// de infrastructure implementa uno de estos contratos.
package ports

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/pkg/config"
)

// TokenDenylist lista de tokens revocados (logout) hasta su vencimiento.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Mailer envía notificaciones por correo.
type Mailer interface {
	// SendOrderCreated avisa a los gerentes que un agente registró un pedido.
	SendOrderCreated(ctx context.Context, order *entity.Order, agent *entity.Agent) error
}

// FileStorage almacena archivos subidos y devuelve la URL pública.
type FileStorage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// OrderPDFRenderer genera el comprobante PDF de un pedido.
type OrderPDFRenderer interface {
	RenderOrder(ctx context.Context, order *entity.Order, agent *entity.Agent) ([]byte, error)
}

// DBProvisioner prepara una base nueva durante la instalación.
type DBProvisioner interface {
	// Ping abre la conexión con cfg y verifica que responde.
	Ping(ctx context.Context, cfg config.DBConfig) error
	// Provision aplica las migraciones y ejecuta seed en una transacción.
	// Devuelve los nombres de las migraciones aplicadas.
	Provision(ctx context.Context, cfg config.DBConfig, seed func(ctx context.Context, r repository.Repos) error) ([]string, error)
}
