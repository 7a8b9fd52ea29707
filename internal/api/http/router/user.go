package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

func (r *Router) registerUserRoutes(
	api fiber.Router,
	h *handler.UserHandler,
	oh *handler.OnboardingHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	users := api.Group("/users", authRequired)
	users.Get("", requirePerm(authorize.ResourceUser, authorize.ActionList), h.List)
	users.Post("", requirePerm(authorize.ResourceUser, authorize.ActionCreate), h.Create)
	users.Get("/:uid", requirePerm(authorize.ResourceUser, authorize.ActionRead), h.Get)
	users.Patch("/:uid", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.Update)
	users.Delete("/:uid", requirePerm(authorize.ResourceUser, authorize.ActionDelete), h.Delete)
	users.Post("/:uid/callback-request", requirePerm(authorize.ResourceCallbackRequest, authorize.ActionCreate), h.RequestCallback)

	api.Get("/callback-requests", authRequired, requirePerm(authorize.ResourceCallbackRequest, authorize.ActionList), h.CallbackRequests)
	api.Get("/uniClients", authRequired, requirePerm(authorize.ResourceClientDirectory, authorize.ActionList), h.ClientsOfTherapist)

	ob := api.Group("/onboarding", authRequired)
	ob.Get("/:uid", requirePerm(authorize.ResourceOnboarding, authorize.ActionRead), oh.Get)
	ob.Post("/:uid", requirePerm(authorize.ResourceOnboarding, authorize.ActionCreate), oh.Submit)
	ob.Patch("/:uid", requirePerm(authorize.ResourceOnboarding, authorize.ActionUpdate), oh.Merge)
}
