package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

var pageAreas = map[string]authorize.Resource{
	"admin":     authorize.ResourcePageAdmin,
	"therapist": authorize.ResourcePageTherapist,
	"client":    authorize.ResourcePageClient,
}

func (r *Router) registerPageRoutes(app *fiber.App, h *handler.PageHandler) {
	app.Get(middleware.LoginPath, h.Login)

	for area, page := range pageAreas {
		guard := middleware.PageGuard(r.p.Auth, page)
		shell := h.Shell(area)
		app.Get("/"+area, guard, shell)
		app.Get("/"+area+"/*", guard, shell)
	}
}
