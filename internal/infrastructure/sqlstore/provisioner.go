package sqlstore

import (
	"context"
	"fmt"

	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
	"github.com/jhoicas/dresssync-api/migrations"
	"github.com/jhoicas/dresssync-api/pkg/config"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

var _ ports.DBProvisioner = (*Provisioner)(nil)

// Provisioner abre conexiones temporales para el asistente de instalación.
type Provisioner struct {
	migrationsDir string
	log           *logger.Logger
}

// NewProvisioner migrationsDir vacío usa las migraciones embebidas.
func NewProvisioner(migrationsDir string, log *logger.Logger) *Provisioner {
	if log == nil {
		log = logger.Nop()
	}
	return &Provisioner{migrationsDir: migrationsDir, log: log}
}

// Ping abre la base con cfg (Open ya hace ping) y la cierra.
func (p *Provisioner) Ping(ctx context.Context, cfg config.DBConfig) error {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	return db.Close()
}

// Provision migra la base y ejecuta seed dentro de una transacción.
func (p *Provisioner) Provision(ctx context.Context, cfg config.DBConfig, seed func(ctx context.Context, r repository.Repos) error) ([]string, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	applied, err := database.NewMigrator(db, migrations.Source(p.migrationsDir), p.log).Up(ctx)
	if err != nil {
		return applied, fmt.Errorf("migrar: %w", err)
	}
	if seed == nil {
		return applied, nil
	}
	err = NewTxRunner(db).Run(ctx, func(r repository.Repos) error {
		return seed(ctx, r)
	})
	return applied, err
}
