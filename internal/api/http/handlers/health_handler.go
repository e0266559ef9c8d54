package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DiogoBrazil/medimage-api/internal/persistence"
)

// HealthHandler responds to the public status probe.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Status handles GET /api/status, reporting dependency health.
func (h *HealthHandler) Status(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deps := fiber.Map{}
	healthy := true

	if err := h.postgres.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
		healthy = false
	} else {
		deps["postgres"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		deps["redis"] = err.Error()
		healthy = false
	} else {
		deps["redis"] = "ok"
	}

	status := http.StatusOK
	message := "API is running"
	if !healthy {
		status = http.StatusServiceUnavailable
		message = "One or more dependencies are unavailable"
	}

	return c.Status(status).JSON(detail(message, status, fiber.Map{
		"service":      h.serviceName,
		"version":      h.version,
		"dependencies": deps,
	}))
}
