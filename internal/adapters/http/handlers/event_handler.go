package handlers

import (
	"campus-rms/internal/core/services"
	"campus-rms/internal/pkg/pagination"
	"campus-rms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EventHandler handles event and event request endpoints
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// ListEvents godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /events [get]
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.eventService.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Events retrieved successfully", pagination.Slice(events, pagination.GetParams(c)))
}

// GetEvent godoc
// @Summary Get event by ID
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events/{id} [get]
func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.eventService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event retrieved successfully", event)
}

// CreateEvent godoc
// @Summary Propose an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateEventInput true "Event data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.CreateEventInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.CreatedBy = p.UserID

	event, err := h.eventService.Create(c.Context(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Event created successfully", event)
}

// UpdateEventStatus godoc
// @Summary Approve, reject or complete an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body services.UpdateEventStatusInput true "Status and comments"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /events/{id}/status [put]
func (h *EventHandler) UpdateEventStatus(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.UpdateEventStatusInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.HODID = p.UserID

	event, err := h.eventService.UpdateStatus(c.Context(), c.Params("id"), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event status updated", event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events/{id} [delete]
func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.eventService.Delete(c.Context(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event deleted successfully", true)
}

// ListEventRequests godoc
// @Summary List the requests to join an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param status query string false "Pending, Approved or Rejected"
// @Success 200 {object} response.Response
// @Router /events/{id}/requests [get]
func (h *EventHandler) ListEventRequests(c *fiber.Ctx) error {
	requests, err := h.eventService.ListRequests(c.Context(), c.Params("id"), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event requests retrieved successfully", pagination.Slice(requests, pagination.GetParams(c)))
}

// CreateEventRequest godoc
// @Summary Ask to take part in an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body ReviewRequest false "Comments"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events/{id}/requests [post]
func (h *EventHandler) CreateEventRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req ReviewRequest
	_ = c.BodyParser(&req)

	request, err := h.eventService.CreateRequest(c.Context(), c.Params("id"), p.UserID, req.Comments)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Event request created successfully", request)
}

// ApproveEventRequest godoc
// @Summary Approve a Pending event request
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event request ID"
// @Param body body ReviewRequest false "Comments"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /event-requests/{id}/approve [put]
func (h *EventHandler) ApproveEventRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req ReviewRequest
	_ = c.BodyParser(&req)

	request, err := h.eventService.ApproveRequest(c.Context(), c.Params("id"), p.UserID, req.Comments)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event request approved", request)
}

// RejectEventRequest godoc
// @Summary Reject a Pending event request
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event request ID"
// @Param body body ReviewRequest false "Comments"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /event-requests/{id}/reject [put]
func (h *EventHandler) RejectEventRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req ReviewRequest
	_ = c.BodyParser(&req)

	request, err := h.eventService.RejectRequest(c.Context(), c.Params("id"), p.UserID, req.Comments)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event request rejected", request)
}
