package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dresssync-api/internal/application/auth"
	"github.com/jhoicas/dresssync-api/internal/application/install"
	"github.com/jhoicas/dresssync-api/internal/application/order"
	"github.com/jhoicas/dresssync-api/internal/application/report"
	"github.com/jhoicas/dresssync-api/internal/application/stock"
	"github.com/jhoicas/dresssync-api/internal/application/tableapi"
	"github.com/jhoicas/dresssync-api/internal/application/upload"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

// RouterDeps dependencias para el router en modo completo.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	TableUC      *tableapi.TableUseCase
	OrderUC      *order.OrderUseCase
	StockUC      *stock.StockUseCase
	ReportUC     *report.ReportUseCase
	UploadUC     *upload.UploadUseCase
	InstallUC    *install.InstallUseCase
	Auth         AuthConfig
	SecureCookie bool
}

// Router registra las rutas de la API con la aplicación instalada.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.Auth)
	managerOnly := RequireRole(entity.RoleManager)

	// Auth: register es público, pero un gerente autenticado puede crear otros gerentes
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.SecureCookie)
	authGroup.Post("/register", OptionalAuth(deps.Auth), authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", requireAuth, authHandler.Me)
	authGroup.Post("/logout", requireAuth, authHandler.Logout)

	// Install: con la app instalada solo responde estado y 409 al reinstalar
	if deps.InstallUC != nil {
		mountInstall(api, NewInstallHandler(deps.InstallUC))
	}

	// CRUD genérico por tabla
	tables := api.Group("/table/:tableId", requireAuth)
	tableHandler := NewTableHandler(deps.TableUC)
	tables.Post("/page", tableHandler.Page)
	tables.Post("/create", tableHandler.Create)
	tables.Post("/update", tableHandler.Update)
	tables.Post("/delete", tableHandler.Delete)

	orders := api.Group("/orders", requireAuth)
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/pdf", orderHandler.PDF)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)

	stockGroup := api.Group("/stock", requireAuth, managerOnly)
	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup.Post("/adjust", stockHandler.Adjust)
	stockGroup.Get("/low", stockHandler.Low)

	reports := api.Group("/reports", requireAuth, managerOnly)
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/summary", reportHandler.Summary)

	uploadHandler := NewUploadHandler(deps.UploadUC)
	api.Post("/upload", requireAuth, uploadHandler.Upload)
}

// InstallRouter monta solo el asistente; se usa mientras INSTALLED no es true.
func InstallRouter(app *fiber.App, uc *install.InstallUseCase) {
	mountInstall(app.Group("/api"), NewInstallHandler(uc))
}

func mountInstall(api fiber.Router, h *InstallHandler) {
	group := api.Group("/install")
	group.Get("/status", h.Status)
	group.Post("/test-db", h.TestDB)
	group.Post("/install", h.Install)
	api.Post("/install", h.Install)
}
