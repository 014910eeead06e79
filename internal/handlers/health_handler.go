package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and store health.
type HealthHandler struct {
	store Pinger
	opts  Options
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store Pinger, opts Options) *HealthHandler {
	return &HealthHandler{store: store, opts: opts}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth pings the store.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := h.opts.requestContext(c)
	defer cancel()

	status, code, store := "healthy", fiber.StatusOK, "connected"
	if err := h.store.Ping(ctx); err != nil {
		h.opts.Logger.WarnContext(ctx, "store ping failed", "err", err)
		status, code, store = "unhealthy", fiber.StatusServiceUnavailable, "unreachable"
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"store":  store,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
