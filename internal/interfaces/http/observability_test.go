package http_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dresssync-api/internal/domain"
	apphttp "github.com/jhoicas/dresssync-api/internal/interfaces/http"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

func observedApp(out io.Writer, production bool) *fiber.App {
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: out})
	metrics := apphttp.NewMetrics("dresssync")

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log, production)})
	app.Use(requestid.New())
	app.Use(apphttp.RequestLogger(log))
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/stock", func(c *fiber.Ctx) error {
		return fmt.Errorf("confirmar pedido: %w", domain.ErrInsufficientStock)
	})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("conexión rechazada por 10.0.0.5") })
	return app
}

// ──────────────────────────────────────────────────────────────────────────────
// Log de peticiones y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestLogger_RegistraEstadoDelError(t *testing.T) {
	var buf bytes.Buffer
	app := observedApp(&buf, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/stock", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	assert.Contains(t, buf.String(), `"path":"/stock"`)
	assert.Contains(t, buf.String(), `"status":409`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"request_id":"`)
}

func TestMetrics_CuentaPorRuta(t *testing.T) {
	app := observedApp(io.Discard, false)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(body), `dresssync_http_requests_total{method="GET",route="/ping",status="200"} 2`)
	assert.Contains(t, string(body), `dresssync_http_request_duration_seconds_count{method="GET",route="/ping"} 2`)
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorHandler
// ──────────────────────────────────────────────────────────────────────────────

func TestErrorHandler_OcultaErrorInternoEnProduccion(t *testing.T) {
	resp, err := observedApp(io.Discard, true).Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"INTERNAL"`)
	assert.NotContains(t, string(body), "10.0.0.5")
}

func TestErrorHandler_MuestraErrorInternoFueraDeProduccion(t *testing.T) {
	resp, err := observedApp(io.Discard, false).Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "10.0.0.5")
}
