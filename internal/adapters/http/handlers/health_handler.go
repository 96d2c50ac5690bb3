package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is anything whose connection can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	appMode  string
	entities Pinger
	graph    Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(appMode string, entities, graph Pinger) *HealthHandler {
	return &HealthHandler{
		appMode:  appMode,
		entities: entities,
		graph:    graph,
	}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 Campus RMS API v1.0 is running",
		"mode":    h.appMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Ping the entity store and the relationship store
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	entityStatus := "healthy"
	if err := h.entities.Ping(ctx); err != nil {
		entityStatus = "unhealthy"
	}
	graphStatus := "healthy"
	if err := h.graph.Ping(ctx); err != nil {
		graphStatus = "unhealthy"
	}

	status, code := "ok", fiber.StatusOK
	if entityStatus != "healthy" || graphStatus != "healthy" {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"api":               "healthy",
			"entityStore":       entityStatus,
			"relationshipStore": graphStatus,
		},
	})
}

// APIInfo handles API v1 info
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Campus RMS API v1.0",
		"version": "1.0.0",
	})
}
