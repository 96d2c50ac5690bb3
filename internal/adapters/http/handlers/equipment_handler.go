package handlers

import (
	"campus-rms/internal/core/services"
	"campus-rms/internal/pkg/pagination"
	"campus-rms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EquipmentHandler handles equipment inventory endpoints
type EquipmentHandler struct {
	equipmentService *services.EquipmentService
	requestService   *services.RequestService
}

// NewEquipmentHandler creates a new equipment handler
func NewEquipmentHandler(equipmentService *services.EquipmentService, requestService *services.RequestService) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentService: equipmentService,
		requestService:   requestService,
	}
}

// ChangeStatusRequest represents the equipment status change body
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// ListEquipment godoc
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department name"
// @Param status query string false "AVAILABLE, IN_USE, MAINTENANCE or DISPOSED"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /equipment [get]
func (h *EquipmentHandler) ListEquipment(c *fiber.Ctx) error {
	items, err := h.equipmentService.List(c.Context(), c.Query("department"), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Equipment retrieved successfully", pagination.Slice(items, pagination.GetParams(c)))
}

// GetEquipment godoc
// @Summary Get equipment by ID
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /equipment/{id} [get]
func (h *EquipmentHandler) GetEquipment(c *fiber.Ctx) error {
	equipment, err := h.equipmentService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Equipment retrieved successfully", equipment)
}

// CreateEquipment godoc
// @Summary Create equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateEquipmentInput true "Equipment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /equipment [post]
func (h *EquipmentHandler) CreateEquipment(c *fiber.Ctx) error {
	var req services.CreateEquipmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	equipment, err := h.equipmentService.Create(c.Context(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Equipment created successfully", equipment)
}

// UpdateEquipment godoc
// @Summary Update equipment details
// @Description Status and department cannot be changed here
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Param body body services.UpdateEquipmentInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /equipment/{id} [put]
func (h *EquipmentHandler) UpdateEquipment(c *fiber.Ctx) error {
	var req services.UpdateEquipmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	equipment, err := h.equipmentService.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Equipment updated successfully", equipment)
}

// ChangeStatus godoc
// @Summary Change equipment status
// @Description AVAILABLE and MAINTENANCE swap freely, DISPOSED is final, IN_USE is set only by requests
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Param body body ChangeStatusRequest true "Target status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /equipment/{id}/status [put]
func (h *EquipmentHandler) ChangeStatus(c *fiber.Ctx) error {
	var req ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	equipment, err := h.equipmentService.ChangeStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Equipment status changed", equipment)
}

// DeleteEquipment godoc
// @Summary Delete equipment
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /equipment/{id} [delete]
func (h *EquipmentHandler) DeleteEquipment(c *fiber.Ctx) error {
	if err := h.equipmentService.Delete(c.Context(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Equipment deleted successfully", true)
}

// ListEquipmentRequests godoc
// @Summary List the requests for one piece of equipment
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Param status query string false "Request status"
// @Success 200 {object} response.Response
// @Router /equipment/{id}/requests [get]
func (h *EquipmentHandler) ListEquipmentRequests(c *fiber.Ctx) error {
	requests, err := h.requestService.ListByEquipment(c.Context(), c.Params("id"), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Requests retrieved successfully", pagination.Slice(requests, pagination.GetParams(c)))
}
