package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

// RequirePermission checks the caller's roles against the policy table in the
// sys domain. Anonymous callers are checked as the anonymous subject, so
// public routes go through the same gate.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		subject := authorize.SubjectFromContext(c.Context())
		if err := auth.MustEnforce(c.Context(), subject, resource, action); err != nil {
			if !errors.Is(err, authorize.ErrForbidden) {
				return err
			}
			if subject == authorize.AnonymousSubject {
				return fiber.ErrUnauthorized
			}
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}
