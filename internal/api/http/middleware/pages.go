package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

const LoginPath = "/login"

// HomeFor is the page area a caller lands on after login.
func HomeFor(a reqctx.Actor) string {
	switch {
	case a.Anonymous():
		return LoginPath
	case authorize.IsAdmin(a):
		return "/admin"
	case authorize.IsTherapist(a):
		return "/therapist"
	case authorize.IsClient(a):
		return "/client"
	}
	return LoginPath
}

// PageGuard serves a role area only to callers allowed to view it. Others
// are redirected to the login page, or to their own area when signed in.
func PageGuard(auth authorize.IAuthorization, page authorize.Resource) fiber.Handler {
	return func(c fiber.Ctx) error {
		a := reqctx.ActorFromContext(c.Context())
		if a.Anonymous() {
			return c.Redirect().Status(fiber.StatusFound).To(LoginPath)
		}

		allowed, err := auth.Enforce(c.Context(), authorize.SubjectFromContext(c.Context()), page, authorize.ActionView)
		if err != nil {
			return err
		}
		if !allowed {
			return c.Redirect().Status(fiber.StatusFound).To(HomeFor(a))
		}
		return c.Next()
	}
}
