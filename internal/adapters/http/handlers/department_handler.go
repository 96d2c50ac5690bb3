package handlers

import (
	"campus-rms/internal/core/services"
	"campus-rms/internal/pkg/pagination"
	"campus-rms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DepartmentHandler handles department endpoints
type DepartmentHandler struct {
	departmentService *services.DepartmentService
	requestService    *services.RequestService
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(departmentService *services.DepartmentService, requestService *services.RequestService) *DepartmentHandler {
	return &DepartmentHandler{
		departmentService: departmentService,
		requestService:    requestService,
	}
}

// ListDepartments godoc
// @Summary List departments
// @Description Every department name carried by a user, with its HOD and equipment
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /departments [get]
func (h *DepartmentHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.departmentService.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Departments retrieved successfully", departments)
}

// GetDepartment godoc
// @Summary Get department by name
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Param name path string true "Department name (case-sensitive)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /departments/{name} [get]
func (h *DepartmentHandler) GetDepartment(c *fiber.Ctx) error {
	department, err := h.departmentService.Get(c.Context(), c.Params("name"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Department retrieved successfully", department)
}

// CreateDepartment godoc
// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDepartmentInput true "Department data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /departments [post]
func (h *DepartmentHandler) CreateDepartment(c *fiber.Ctx) error {
	var req services.CreateDepartmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	department, err := h.departmentService.Create(c.Context(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Department created successfully", department)
}

// UpdateDepartment godoc
// @Summary Update department location or HOD
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Department name"
// @Param body body services.UpdateDepartmentInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /departments/{name} [put]
func (h *DepartmentHandler) UpdateDepartment(c *fiber.Ctx) error {
	var req services.UpdateDepartmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	department, err := h.departmentService.Update(c.Context(), c.Params("name"), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Department updated successfully", department)
}

// ListDepartmentRequests godoc
// @Summary List requests for a department's equipment
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param name path string true "Department name"
// @Param status query string false "Request status"
// @Success 200 {object} response.Response
// @Router /departments/{name}/requests [get]
func (h *DepartmentHandler) ListDepartmentRequests(c *fiber.Ctx) error {
	requests, err := h.requestService.ListByDepartment(c.Context(), c.Params("name"), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Requests retrieved successfully", pagination.Slice(requests, pagination.GetParams(c)))
}
