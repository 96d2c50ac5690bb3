package handlers

import (
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/services"
	"campus-rms/internal/pkg/pagination"
	"campus-rms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService    *services.UserService
	requestService *services.RequestService
	eventService   *services.EventService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, requestService *services.RequestService, eventService *services.EventService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		requestService: requestService,
		eventService:   eventService,
	}
}

// ListUsers handles listing users
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department name"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.List(c.Context(), c.Query("department"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Users retrieved successfully", pagination.Slice(users, pagination.GetParams(c)))
}

// GetUser handles getting a user by ID
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User retrieved successfully", user)
}

// UpdateUser handles updating a user. Staff may update anyone, others only themselves.
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body services.UpdateUserInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id := c.Params("id")
	if p.Role != domain.RoleStaff && p.UserID != id {
		return response.Forbidden(c, "You can only update your own profile")
	}

	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.Context(), id, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User updated successfully", user)
}

// DeleteUser handles deleting a user
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.userService.Delete(c.Context(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User deleted successfully", true)
}

// ListUserRequests lists the equipment requests a user filed
// @Summary List a user's equipment requests
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param status query string false "Request status"
// @Success 200 {object} response.Response
// @Router /users/{id}/requests [get]
func (h *UserHandler) ListUserRequests(c *fiber.Ctx) error {
	requests, err := h.requestService.ListByUser(c.Context(), c.Params("id"), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Requests retrieved successfully", pagination.Slice(requests, pagination.GetParams(c)))
}

// ListUserEventRequests lists the event requests a user filed
// @Summary List a user's event requests
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param status query string false "Event request status"
// @Success 200 {object} response.Response
// @Router /users/{id}/event-requests [get]
func (h *UserHandler) ListUserEventRequests(c *fiber.Ctx) error {
	requests, err := h.eventService.ListUserRequests(c.Context(), c.Params("id"), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event requests retrieved successfully", pagination.Slice(requests, pagination.GetParams(c)))
}
