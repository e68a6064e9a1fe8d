// migrate aplica las migraciones pendientes, muestra su estado o siembra el catálogo por defecto
// sobre la base configurada en .env / variables de entorno.
//
// Uso: go run ./cmd/migrate [up|status|seed]
// Sin argumentos ejecuta "up".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jhoicas/dresssync-api/internal/application/install"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/sqlstore"
	"github.com/jhoicas/dresssync-api/migrations"
	"github.com/jhoicas/dresssync-api/pkg/config"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

func main() {
	dir := flag.String("dir", "", "directorio de migraciones (vacío = embebidas)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "uso: %s [-dir DIR] [up|status|seed]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})
	if *dir == "" {
		*dir = cfg.App.MigrationsDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("db_type", cfg.DB.Type).Msg("conexión a la base de datos")
	}
	defer db.Close()

	migrator := database.NewMigrator(db, migrations.Source(*dir), log.Component("migrate"))

	switch cmd {
	case "up":
		applied, err := migrator.Up(ctx)
		if err != nil {
			log.Error().Err(err).Strs("applied", applied).Msg("migraciones")
			os.Exit(1)
		}
		log.Info().Int("count", len(applied)).Strs("applied", applied).Msg("migraciones al día")
	case "status":
		list, err := migrator.Status(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("estado de migraciones")
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRACIÓN\tAPLICADA")
		for _, m := range list {
			applied := "pendiente"
			if m.Executed {
				applied = m.ExecutedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\n", m.Name, applied)
		}
		_ = w.Flush()
	case "seed":
		err := sqlstore.NewTxRunner(db).Run(ctx, func(r repository.Repos) error {
			return install.SeedCatalog(ctx, r.ProductConfig)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("sembrar catálogo")
		}
		log.Info().Msg("catálogo sembrado (si estaba vacío)")
	default:
		flag.Usage()
		os.Exit(2)
	}
}
