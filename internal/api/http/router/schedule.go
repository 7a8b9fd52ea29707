package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

func (r *Router) registerScheduleRoutes(api fiber.Router, h *handler.ScheduleHandler, authRequired fiber.Handler, requirePerm permFunc) {
	s := api.Group("/schedules", authRequired)
	s.Get("", requirePerm(authorize.ResourceSchedule, authorize.ActionList), h.List)
	s.Post("", requirePerm(authorize.ResourceSchedule, authorize.ActionCreate), h.Create)
	s.Get("/therapist/:tid", requirePerm(authorize.ResourceSchedule, authorize.ActionList), h.ListForTherapist)
	s.Patch("/:id", requirePerm(authorize.ResourceSchedule, authorize.ActionUpdate), h.Update)
	s.Delete("/:id", requirePerm(authorize.ResourceSchedule, authorize.ActionDelete), h.Delete)
}
