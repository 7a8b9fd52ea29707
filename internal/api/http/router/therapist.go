package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

// Listing and reading therapists is public; the anonymous role carries
// those grants.
func (r *Router) registerTherapistRoutes(api fiber.Router, h *handler.TherapistHandler, requirePerm permFunc) {
	t := api.Group("/therapists")
	t.Get("", requirePerm(authorize.ResourceTherapist, authorize.ActionList), h.List)
	t.Post("", requirePerm(authorize.ResourceTherapist, authorize.ActionCreate), h.Create)
	t.Get("/:tid", requirePerm(authorize.ResourceTherapist, authorize.ActionRead), h.Get)
	t.Patch("/:tid", requirePerm(authorize.ResourceTherapist, authorize.ActionUpdate), h.Update)
	t.Delete("/:tid", requirePerm(authorize.ResourceTherapist, authorize.ActionDelete), h.Delete)
	t.Get("/:tid/availability", requirePerm(authorize.ResourceAvailability, authorize.ActionRead), h.Availability)
}
