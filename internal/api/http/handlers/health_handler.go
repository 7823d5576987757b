package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/observability"
)

// HealthCheck checks one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness checks.
type HealthHandler struct {
	serviceName string
	version     string
	storage     string
	checks      []HealthCheck
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance. storage names the active ticket store.
func NewHealthHandler(serviceName, version, storage string, metrics *observability.Metrics, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		storage:     storage,
		checks:      checks,
		metrics:     metrics,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "alive", fiber.Map{
		"service": h.serviceName,
		"version": h.version,
		"storage": h.storage,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			depStatus[check.Name] = err.Error()
			ready = false
			continue
		}
		depStatus[check.Name] = "ok"
	}

	if ready {
		return respond(c, fiber.StatusOK, "ready", fiber.Map{"dependencies": depStatus})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"message": "one or more dependencies unavailable",
		"error": fiber.Map{
			"kind":    "DEPENDENCY_UNAVAILABLE",
			"code":    "DEPENDENCY_UNAVAILABLE",
			"details": depStatus,
		},
	})
}

// Metrics GET /health/metrics returns the in-process request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", h.metrics.Snapshot())
}
