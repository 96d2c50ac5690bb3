package middleware

import (
	"campus-rms/internal/adapters/http/handlers"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/services"
	"campus-rms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware resolves the bearer token to a principal and stores it in
// the request locals. Every failure is a 401 and the handler is never run.
func AuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Authenticate(c.Context(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return response.FromError(c, err)
		}

		c.Locals(handlers.PrincipalKey, p)
		c.Locals("userID", p.UserID)
		c.Locals("role", p.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(domain.Role)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// StaffOnly allows only STAFF
func StaffOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleStaff)
}

// HODOnly allows only heads of department
func HODOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleHOD)
}

// StaffOrHOD allows STAFF or HOD roles
func StaffOrHOD() fiber.Handler {
	return RoleMiddleware(domain.RoleStaff, domain.RoleHOD)
}

// StudentOnly allows only students
func StudentOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleStudent)
}
