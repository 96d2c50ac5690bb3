package handlers

import (
	"campus-rms/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// PrincipalKey is the fiber.Locals key the auth middleware stores the caller under
const PrincipalKey = "principal"

// principal returns the caller set by the auth middleware
func principal(c *fiber.Ctx) (*domain.Principal, error) {
	p, ok := c.Locals(PrincipalKey).(*domain.Principal)
	if !ok || p == nil {
		return nil, domain.Unauthorized("authentication required")
	}
	return p, nil
}
