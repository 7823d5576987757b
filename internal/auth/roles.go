package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// RequireAuthenticated ensures a caller was resolved by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireStudent admits only student tokens.
func RequireStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !actor.IsStudent() {
			return apperrors.NewAccessDenied("STUDENT_ONLY", "only students can perform this action")
		}
		return c.Next()
	}
}

// RequireStaff rejects student tokens.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if actor.IsStudent() {
			return apperrors.NewAccessDenied("ACCESS_DENIED", "staff access required")
		}
		return c.Next()
	}
}
