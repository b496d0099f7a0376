package handler

import (
	"context"
	"net/http"

	"github.com/arturoeanton/codelens-timemachine/internal/adapter/dialect"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves health, dialect and metrics endpoints.
type SystemHandler struct {
	appName string
	db      Pinger
	metrics http.Handler
}

// NewSystemHandler creates a new system handler. metrics may be nil to skip /metrics.
func NewSystemHandler(appName string, db Pinger, metrics http.Handler) *SystemHandler {
	return &SystemHandler{appName: appName, db: db, metrics: metrics}
}

// Register sets up public routes on the app.
func (h *SystemHandler) Register(app fiber.Router) {
	app.Get("/api/v1/health", h.Health)
	app.Get("/api/v1/dialects/resolve", h.ResolveDialect)
	if h.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.metrics))
	}
}

// Health reports service and database status.
func (h *SystemHandler) Health(c fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK
	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"app":     h.appName,
		"version": "1.0.0",
	})
}

// ResolveDialect reports which dialect an id or connection url resolves to.
func (h *SystemHandler) ResolveDialect(c fiber.Ctx) error {
	d, err := dialect.Find(c.Query("id"), c.Query("url"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"id": d.ID, "supported": d.Supported()})
}
