package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"storefront/internal/config"
	"storefront/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *fiber.App {
	t.Helper()

	cfg := config.Defaults()
	cfg.StoreDriver = config.DriverMemory
	cfg.UploadDir = filepath.Join(t.TempDir(), "uploads")
	cfg.JWTSecret = "test_jwt_secret"
	if mutate != nil {
		mutate(&cfg)
	}

	app, cleanup, err := NewApp(context.Background(), cfg, observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.Shutdown()
		cleanup(context.Background())
	})
	return app
}

func TestServerHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "storefront_http_requests_total")
}

func TestMetricsCanBeDisabled(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.MetricsEnabled = false })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadedImageIsServed(t *testing.T) {
	var uploadDir string
	app := newTestApp(t, func(c *config.Config) { uploadDir = c.UploadDir })

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"name": "Mug", "category": "kitchen", "price": "3", "stock": "1"} {
		require.NoError(t, w.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="productImage"; filename="mug.gif"`)
	h.Set("Content-Type", "image/gif")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("GIF89a"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	stored := created["productImage"]
	require.True(t, strings.HasPrefix(stored, filepath.ToSlash(uploadDir)))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/uploads/%s", path.Base(stored)), nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GIF89a", string(body))
}

func TestNewAppRejectsUnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreDriver = "cassandra"

	_, _, err := NewApp(context.Background(), cfg, observability.NopLogger())
	assert.Error(t, err)
}
