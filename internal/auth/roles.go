package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/room-booking/internal/domain"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// RequireAdmin ensures the principal currently holds the admin flag.
func RequireAdmin() fiber.Handler {
	return Require(CanManageUsers, "admin role required")
}

// Require rejects principals failing allowed with a forbidden error.
func Require(allowed func(*domain.User) bool, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		if !allowed(user) {
			return apperrors.NewForbidden(message)
		}
		return c.Next()
	}
}
