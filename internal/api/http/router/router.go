package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/mindbook_backend/config"
	"github.com/Alijeyrad/mindbook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindbook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/mindbook_backend/internal/service/assignment"
	"github.com/Alijeyrad/mindbook_backend/internal/service/auth"
	"github.com/Alijeyrad/mindbook_backend/internal/service/onboarding"
	"github.com/Alijeyrad/mindbook_backend/internal/service/pricing"
	"github.com/Alijeyrad/mindbook_backend/internal/service/report"
	"github.com/Alijeyrad/mindbook_backend/internal/service/scheduling"
	"github.com/Alijeyrad/mindbook_backend/internal/service/session"
	"github.com/Alijeyrad/mindbook_backend/internal/service/therapist"
	"github.com/Alijeyrad/mindbook_backend/internal/service/user"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg           *config.Config
	Auth          authorize.IAuthorization
	AuthSvc       auth.Service
	UserSvc       user.Service
	TherapistSvc  therapist.Service
	SchedulingSvc scheduling.Service
	SessionSvc    session.Service
	AssignmentSvc assignment.Service
	ReportSvc     report.Service
	PricingSvc    pricing.Service
	OnboardingSvc onboarding.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

type permFunc func(authorize.Resource, authorize.Action) fiber.Handler

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	// every route below sees the caller, anonymous or not
	app.Use(middleware.Authenticate(r.p.AuthSvc))
	authRequired := middleware.AuthRequired()

	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	authH := handler.NewAuthHandler(r.p.AuthSvc)
	userH := handler.NewUserHandler(r.p.UserSvc)
	therapistH := handler.NewTherapistHandler(r.p.TherapistSvc, r.p.SchedulingSvc)
	scheduleH := handler.NewScheduleHandler(r.p.SchedulingSvc)
	sessionH := handler.NewSessionHandler(r.p.SessionSvc)
	assignmentH := handler.NewAssignmentHandler(r.p.AssignmentSvc)
	reportH := handler.NewReportHandler(r.p.ReportSvc)
	packageH := handler.NewPackageHandler(r.p.PricingSvc)
	onboardingH := handler.NewOnboardingHandler(r.p.OnboardingSvc)
	pageH := handler.NewPageHandler(r.p.Cfg.Server.PagesDir)

	api := app.Group("/api")

	r.registerAuthRoutes(api, authH, authRequired, requirePerm)
	r.registerTherapistRoutes(api, therapistH, requirePerm)
	r.registerScheduleRoutes(api, scheduleH, authRequired, requirePerm)
	r.registerSessionRoutes(api, sessionH, authRequired, requirePerm)
	r.registerAssignmentRoutes(api, assignmentH, authRequired, requirePerm)
	r.registerReportRoutes(api, reportH, authRequired, requirePerm)
	r.registerUserRoutes(api, userH, onboardingH, authRequired, requirePerm)
	r.registerPackageRoutes(api, packageH, requirePerm)

	r.registerPageRoutes(app, pageH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
