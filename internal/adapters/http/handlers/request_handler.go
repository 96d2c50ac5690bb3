package handlers

import (
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/services"
	"campus-rms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles equipment loan request endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// ReviewRequest is the body of approve, reject and complete calls
type ReviewRequest struct {
	Comments string `json:"comments"`
}

// CreateRequest godoc
// @Summary File an equipment request
// @Description The student is the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRequestInput true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.CreateRequestInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.StudentID = p.UserID

	request, err := h.requestService.Create(c.Context(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Request created successfully", request)
}

// GetRequest godoc
// @Summary Get request by ID
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	request, err := h.requestService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request retrieved successfully", request)
}

// ApproveRequest godoc
// @Summary Approve a PENDING request
// @Description The caller must be the HOD of the equipment's department
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body ReviewRequest false "Comments"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /requests/{id}/approve [put]
func (h *RequestHandler) ApproveRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req ReviewRequest
	_ = c.BodyParser(&req)

	request, err := h.requestService.Approve(c.Context(), c.Params("id"), p.UserID, req.Comments)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request approved", request)
}

// RejectRequest godoc
// @Summary Reject a PENDING request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body ReviewRequest false "Reason"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/reject [put]
func (h *RequestHandler) RejectRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req ReviewRequest
	_ = c.BodyParser(&req)

	request, err := h.requestService.Reject(c.Context(), c.Params("id"), p.UserID, req.Comments)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request rejected", request)
}

// CompleteRequest godoc
// @Summary Mark an APPROVED loan as returned
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body ReviewRequest false "Comments"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/complete [put]
func (h *RequestHandler) CompleteRequest(c *fiber.Ctx) error {
	var req ReviewRequest
	_ = c.BodyParser(&req)

	request, err := h.requestService.Complete(c.Context(), c.Params("id"), req.Comments)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request completed", request)
}

// CancelRequest godoc
// @Summary Cancel a PENDING or APPROVED request
// @Description Students may cancel only their own requests
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/cancel [put]
func (h *RequestHandler) CancelRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if p.Role == domain.RoleStudent {
		current, err := h.requestService.Get(c.Context(), c.Params("id"))
		if err != nil {
			return response.FromError(c, err)
		}
		if current.Student == nil || current.Student.UserID != p.UserID {
			return response.Forbidden(c, "You can only cancel your own requests")
		}
	}

	request, err := h.requestService.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request cancelled", request)
}
