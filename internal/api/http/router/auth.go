package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, authRequired fiber.Handler, requirePerm permFunc) {
	group := api.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", authRequired, h.Logout)

	api.Get("/accounts/me", authRequired, requirePerm(authorize.ResourceAccount, authorize.ActionRead), h.Me)

	roles := api.Group("/admin/roles", authRequired)
	roles.Post("", requirePerm(authorize.ResourceRBAC, authorize.ActionGrant), h.GrantRole)
	roles.Delete("", requirePerm(authorize.ResourceRBAC, authorize.ActionRevoke), h.RevokeRole)
}
