package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/dresssync-api/docs"
	"github.com/jhoicas/dresssync-api/internal/application/auth"
	"github.com/jhoicas/dresssync-api/internal/application/install"
	"github.com/jhoicas/dresssync-api/internal/application/order"
	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/application/report"
	"github.com/jhoicas/dresssync-api/internal/application/stock"
	"github.com/jhoicas/dresssync-api/internal/application/tableapi"
	"github.com/jhoicas/dresssync-api/internal/application/upload"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/dresssync-api/internal/infrastructure/pdf"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/session"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/sqlstore"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/dresssync-api/internal/interfaces/http"
	"github.com/jhoicas/dresssync-api/migrations"
	"github.com/jhoicas/dresssync-api/pkg/config"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

// @title                       DressSync API
// @version                     1.0
// @description                 API de DressSync: pedidos multi-producto de agentes de venta, stock por talla, reportes e instalación.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_type", cfg.DB.Type).
		Bool("installed", cfg.App.Installed).
		Msg("iniciando aplicación")

	ctx := context.Background()

	app := newApp(cfg, log)

	provisioner := sqlstore.NewProvisioner(cfg.App.MigrationsDir, log.Component("install"))
	installUC := install.NewInstallUseCase(provisioner, ".", cfg.App.Installed, cfg.DB.Type, log)

	var cleanup []func()
	if !cfg.App.Installed {
		// Modo instalación: solo el asistente; tras instalar hay que reiniciar
		log.Warn().Msg("aplicación no instalada: modo instalación en /api/install")
		httpRouter.InstallRouter(app, installUC)
	} else {
		cleanup = mountFull(ctx, app, cfg, installUC, log)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}

	log.Info().Msg("aplicación detenida")
}

// newApp crea la aplicación fiber con el middleware común y /health.
// Es todo lo que se expone antes de saber si la aplicación está instalada.
func newApp(cfg *config.Config, log *logger.Logger) *fiber.App {
	// el límite de fiber deja margen para el resto del multipart
	maxUpload := cfg.Storage.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 5
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    (maxUpload + 1) << 20,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http"), cfg.App.IsProduction()),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "installed": cfg.App.Installed})
	})
	return app
}

// mountObservability registra /metrics y la documentación Swagger.
// En modo instalación no se montan: solo existen /health y /api/install/*.
func mountObservability(app *fiber.App) {
	metrics := httpRouter.NewMetrics("dresssync")
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DressSync API",
	}))
}

// mountFull abre la base, aplica migraciones pendientes y registra todas las rutas.
// Devuelve las funciones de cierre en orden de apertura.
func mountFull(ctx context.Context, app *fiber.App, cfg *config.Config, installUC *install.InstallUseCase, log *logger.Logger) []func() {
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET vacío")
	}

	mountObservability(app)

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("db_type", cfg.DB.Type).Msg("conexión a la base de datos")
	}
	cleanup := []func(){func() { _ = db.Close() }}

	applied, err := database.NewMigrator(db, migrations.Source(cfg.App.MigrationsDir), log.Component("migrate")).Up(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	if len(applied) > 0 {
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
	}

	var denylist ports.TokenDenylist = session.NewMemoryDenylist()
	if cfg.Redis.URL != "" {
		rd, err := session.NewRedisDenylist(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		cleanup = append(cleanup, func() { _ = rd.Close() })
		denylist = rd
	}

	files, err := storage.New(ctx, cfg.Storage, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de archivos")
	}
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		app.Static(cfg.Storage.PublicPath, cfg.Storage.UploadDir)
	}

	var mailer ports.Mailer
	if m := mail.NewSMTPMailer(cfg.SMTP); m != nil {
		mailer = m
	} else {
		log.Info().Msg("SMTP no configurado: sin avisos de pedidos")
	}

	repos := sqlstore.NewRepos(db)
	txRunner := sqlstore.NewTxRunner(db)

	authUC := auth.NewAuthUseCase(txRunner, repos.Users, denylist, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	orderUC := order.NewOrderUseCase(
		txRunner, repos.Orders, repos.Agents, repos.ProductConfig,
		mailer, infrapdf.NewOrderReceiptGenerator(cfg.App.Name), log,
	)

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		TableUC:      tableapi.NewTableUseCase(repos.Tables, txRunner),
		OrderUC:      orderUC,
		StockUC:      stock.NewStockUseCase(txRunner, repos.Stock, log),
		ReportUC:     report.NewReportUseCase(sqlstore.NewReportRepository(db)),
		UploadUC:     upload.NewUploadUseCase(files, cfg.Storage.MaxUploadMB),
		InstallUC:    installUC,
		Auth:         httpRouter.AuthConfig{Secret: cfg.JWT.Secret, Denylist: denylist},
		SecureCookie: cfg.App.IsProduction(),
	})
	return cleanup
}
