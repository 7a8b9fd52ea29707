package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

func (r *Router) registerSessionRoutes(api fiber.Router, h *handler.SessionHandler, authRequired fiber.Handler, requirePerm permFunc) {
	s := api.Group("/sessions", authRequired)
	s.Get("", requirePerm(authorize.ResourceSession, authorize.ActionList), h.List)
	s.Post("", requirePerm(authorize.ResourceSession, authorize.ActionCreate), h.Book)
	s.Get("/:sid", requirePerm(authorize.ResourceSession, authorize.ActionRead), h.Get)
	s.Patch("/:sid", requirePerm(authorize.ResourceSession, authorize.ActionUpdate), h.Update)
	s.Delete("/:sid", requirePerm(authorize.ResourceSession, authorize.ActionDelete), h.Delete)
	s.Patch("/:sid/status", requirePerm(authorize.ResourceSessionStatus, authorize.ActionUpdate), h.SetStatus)
}
