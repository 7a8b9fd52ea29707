package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/mindbook_backend/config"
	"github.com/Alijeyrad/mindbook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/mindbook_backend/internal/api/http/router"
	"github.com/Alijeyrad/mindbook_backend/pkg/constants"
	"github.com/Alijeyrad/mindbook_backend/pkg/logs"
	"github.com/Alijeyrad/mindbook_backend/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

// therapist images arrive inline as base64
const bodyLimit = 4 << 20

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Redis     *redis.Client
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := New(p.Cfg)

	if p.OTel != nil && p.OTel.Traces != nil {
		app.Use(observability.FiberMiddleware())
	}

	configureGlobalMiddleware(app, p.Cfg, p.Redis)

	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// New builds the bare fiber app with the JSON error envelope.
func New(cfg *config.Config) *fiber.App {
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	return fiber.New(fiber.Config{
		AppName:      constants.AppName,
		BodyLimit:    bodyLimit,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		ErrorHandler: errorHandler,
	})
}

// errorHandler renders errors that escaped a handler. Only fiber errors keep
// their message; anything else is logged and reported as a bare 500.
func errorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": strings.ToLower(fe.Message)})
	}
	logs.FromContext(c.Context()).Error("unhandled request error",
		"method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config, rdb *redis.Client) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.Server.Environment == constants.EnvProduction {
		h := cfg.Server.Headers
		// empty fields fall back to helmet's defaults
		app.Use(helmet.New(helmet.Config{
			XSSProtection:             h.XSSProtection,
			ContentTypeNosniff:        h.ContentTypeNosniff,
			XFrameOptions:             h.XFrameOptions,
			ReferrerPolicy:            h.ReferrerPolicy,
			CrossOriginEmbedderPolicy: h.CrossOriginEmbedderPolicy,
			CrossOriginOpenerPolicy:   h.CrossOriginOpenerPolicy,
			CrossOriginResourcePolicy: h.CrossOriginResourcePolicy,
			OriginAgentCluster:        h.OriginAgentCluster,
			XDNSPrefetchControl:       h.XDNSPrefetchControl,
			XDownloadOptions:          h.XDownloadOptions,
			XPermittedCrossDomain:     h.XPermittedCrossDomain,
		}))
	}
	if c := cfg.Server.CORS; c.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     c.AllowOrigins,
			AllowMethods:     c.AllowMethods,
			AllowHeaders:     c.AllowHeaders,
			ExposeHeaders:    append([]string{middleware.HeaderRequestID}, c.ExposeHeaders...),
			AllowCredentials: c.AllowCredentials,
			MaxAge:           c.MaxAgeSeconds,
		}))
	}
	if cfg.Server.RateLimit.Enabled {
		app.Use(middleware.NewLimiterWithRedis(rdb, cfg.Server.RateLimit))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${respHeader:X-Request-Id}] ${method} ${url} ${status} ${latency}\n",
	}))
}
