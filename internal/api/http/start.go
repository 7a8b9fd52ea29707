package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/mindbook_backend/config"
	"github.com/Alijeyrad/mindbook_backend/internal/api/http/router"
	"github.com/Alijeyrad/mindbook_backend/internal/app"
)

// Start runs the API with the notification workers until a signal arrives.
func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// NewServer registers the listen hook, so the app must be requested
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
	).Run()
}
