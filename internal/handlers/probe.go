package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"autoreply/internal/models"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeHandler handles health probe endpoints.
type ProbeHandler struct {
	db Pinger
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(database Pinger) *ProbeHandler {
	return &ProbeHandler{db: database}
}

// Liveness returns 200 OK while the process is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(models.HealthResponse{Status: "ok"})
}

// Readiness returns 200 OK if the outcome log is reachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database unavailable")
	}
	return c.JSON(models.HealthResponse{Status: "ok"})
}
