package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

func (r *Router) registerReportRoutes(api fiber.Router, h *handler.ReportHandler, authRequired fiber.Handler, requirePerm permFunc) {
	rp := api.Group("/reports", authRequired)
	rp.Get("", requirePerm(authorize.ResourceReport, authorize.ActionList), h.List)
	rp.Post("", requirePerm(authorize.ResourceReport, authorize.ActionCreate), h.Create)
	rp.Get("/:sid", requirePerm(authorize.ResourceReport, authorize.ActionRead), h.Get)
	rp.Patch("/:sid", requirePerm(authorize.ResourceReport, authorize.ActionUpdate), h.Update)
}
