package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

func (r *Router) registerPackageRoutes(api fiber.Router, h *handler.PackageHandler, requirePerm permFunc) {
	p := api.Group("/packages")
	p.Get("", requirePerm(authorize.ResourcePackage, authorize.ActionList), h.List)
	p.Post("", requirePerm(authorize.ResourcePackage, authorize.ActionCreate), h.Create)
	p.Get("/:pid", requirePerm(authorize.ResourcePackage, authorize.ActionRead), h.Get)
	p.Patch("/:pid", requirePerm(authorize.ResourcePackage, authorize.ActionUpdate), h.Update)
	p.Delete("/:pid", requirePerm(authorize.ResourcePackage, authorize.ActionDelete), h.Delete)
}
