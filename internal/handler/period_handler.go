package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/arturoeanton/codelens-timemachine/internal/port"
	"github.com/arturoeanton/codelens-timemachine/internal/service"
	"github.com/gofiber/fiber/v3"
)

// PeriodResolver is the part of service.PeriodService used by the HTTP API.
type PeriodResolver interface {
	TimeMachine(ctx context.Context, resourceID int64) (*service.TimeMachine, error)
	ResolveResource(ctx context.Context, resourceID int64) (*service.Resolution, error)
	ResolveProject(ctx context.Context, projectID int64) ([]service.Resolution, error)
}

// PeriodHandler exposes resolved comparison periods.
type PeriodHandler struct {
	periods PeriodResolver
}

// NewPeriodHandler creates a new period handler.
func NewPeriodHandler(periods PeriodResolver) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// Register sets up period routes.
func (h *PeriodHandler) Register(api fiber.Router) {
	api.Get("/resources/:id/periods", h.ResourcePeriods)
	api.Get("/resources/:id/periods/:index", h.ResourcePeriod)
	api.Get("/projects/:id/periods", h.ProjectPeriods)
}

// ResourcePeriods returns every period of a resource.
func (h *PeriodHandler) ResourcePeriods(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid resource id"})
	}

	res, err := h.periods.ResolveResource(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(res)
}

// ResourcePeriod returns the period configured with a given index.
func (h *PeriodHandler) ResourcePeriod(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid resource id"})
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid period index"})
	}

	tm, err := h.periods.TimeMachine(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	period, ok := tm.Period(index)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "period not configured"})
	}
	past, _ := tm.PastSnapshot(index)
	return c.JSON(fiber.Map{
		"resource":      tm.Resource(),
		"period":        period,
		"past_snapshot": past,
	})
}

// ProjectPeriods returns the periods of a project and all of its modules.
func (h *PeriodHandler) ProjectPeriods(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project id"})
	}

	results, err := h.periods.ResolveProject(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	if results == nil {
		results = []service.Resolution{}
	}
	return c.JSON(fiber.Map{"resolutions": results, "count": len(results)})
}

func writeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, port.ErrResourceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.Error("period resolution failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "period resolution failed"})
	}
}

