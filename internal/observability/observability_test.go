package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/storefront/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"}, config.AppConfig{Name: "svc", Env: "production"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
	app.Get("/boom", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusInternalServerError) })

	for _, path := range []string{"/items/1", "/items/2", "/boom"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("GET", "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("GET", "/boom", "500")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.activeRequests))

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, zap.ErrorLevel, logs.All()[2].Level)
}

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	metrics.RecordError("FORBIDDEN")
	metrics.RecordRequest("/api/products", "GET", 200, 0)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `storefront_http_errors_total{code="FORBIDDEN"} 1`)
	assert.True(t, strings.Contains(out, "storefront_http_request_duration_seconds"))
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordError("X")
		m.RecordRequest("/", "GET", 200, 0)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
