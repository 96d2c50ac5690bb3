package response

import (
	"errors"
	"log"

	"campus-rms/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusServiceUnavailable, message)
}

// FromError maps a service error to its HTTP status. Guard failures are
// checked first so that a lost compare-and-set reads as 409 even though it
// surfaced from the write phase.
func FromError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, domain.Message(err))
	case errors.Is(err, domain.ErrConflict):
		return Conflict(c, domain.Message(err))
	case errors.Is(err, domain.ErrInvalidInput):
		return BadRequest(c, domain.Message(err))
	case errors.Is(err, domain.ErrUnauthorized):
		return Unauthorized(c, domain.Message(err))
	case errors.Is(err, domain.ErrForbidden):
		return Forbidden(c, domain.Message(err))
	case errors.Is(err, domain.ErrGraphWriteFailed), errors.Is(err, domain.ErrDocumentWriteFailed):
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return Error(c, fiber.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return ServiceUnavailable(c, "storage unavailable")
	}
	log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	return InternalServerError(c, "internal server error")
}
