package observability

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareCountsByRouteTemplate(t *testing.T) {
	m := NewMetrics()

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/metrics", m.Handler())

	for _, id := range []string{"1", "2", "3"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+id, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "204"))
	assert.Equal(t, float64(3), got)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "storefront_http_requests_total"))
}

func TestMetricsMiddlewareRecordsErrorStatus(t *testing.T) {
	m := NewMetrics()

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "nope")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/fail", "418"))
	assert.Equal(t, float64(1), got)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.UserRegistered()
		m.ProductCreated()
		m.OrderPlaced()
		m.LoginFailed()
		m.UploadRejected("type")
	})
}

func TestBusinessCounters(t *testing.T) {
	m := NewMetrics()

	m.OrderPlaced()
	m.OrderPlaced()
	m.UploadRejected("too_large")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.OrdersPlaced))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UploadsRejected.WithLabelValues("too_large")))
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, "prod").Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, "dev").Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
