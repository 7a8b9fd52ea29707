package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

func (r *Router) registerAssignmentRoutes(api fiber.Router, h *handler.AssignmentHandler, authRequired fiber.Handler, requirePerm permFunc) {
	a := api.Group("/assignments", authRequired)
	a.Get("", requirePerm(authorize.ResourceAssignment, authorize.ActionList), h.List)
	a.Post("", requirePerm(authorize.ResourceAssignment, authorize.ActionCreate), h.Create)
	a.Get("/:id", requirePerm(authorize.ResourceAssignment, authorize.ActionRead), h.Get)
	a.Patch("/:id", requirePerm(authorize.ResourceAssignment, authorize.ActionUpdate), h.Update)
}
