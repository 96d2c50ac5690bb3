package handlers

import (
	"campus-rms/internal/core/services"
	"campus-rms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes operational endpoints
type AdminHandler struct {
	driftService *services.DriftService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(driftService *services.DriftService) *AdminHandler {
	return &AdminHandler{
		driftService: driftService,
	}
}

// Consistency godoc
// @Summary Compare loan requests across both stores
// @Description Lists REQUESTED edges without a document, documents without an edge, and status mismatches. Nothing is repaired.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /admin/consistency [get]
func (h *AdminHandler) Consistency(c *fiber.Ctx) error {
	report, err := h.driftService.Check(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	message := "Stores are consistent"
	if !report.Consistent() {
		message = "Stores have drifted"
	}
	return response.Success(c, message, report)
}
