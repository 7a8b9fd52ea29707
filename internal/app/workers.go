package app

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/mindbook_backend/config"
	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/internal/service/notification"
	"github.com/Alijeyrad/mindbook_backend/pkg/email"
	"github.com/Alijeyrad/mindbook_backend/pkg/observability"
	"github.com/Alijeyrad/mindbook_backend/pkg/sms"
)

// WorkerModule runs the in-process notification queue. Services publish to
// it; the dispatcher turns events into emails and SMS.
var WorkerModule = fx.Module("workers",
	fx.Provide(ProvideNotificationQueue),
	fx.Provide(func(q notification.Service) notification.Publisher { return q }),
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Cfg     *config.Config
	DB      *repo.Client
	Mail    *email.Client
	SMS     *sms.Client
	Metrics *observability.BookingMetrics
}

func ProvideNotificationQueue(p WorkerParams) notification.Service {
	d := notification.NewDispatcher(
		notification.NewDirectory(p.DB),
		p.Mail,
		p.Mail.Branding(),
		p.SMS,
		notification.DispatcherConfig{AdminEmails: p.Cfg.Notification.AdminEmails},
		p.Metrics,
	)
	return notification.New(p.Cfg.Notification.QueueSize, d, slog.Default().With("component", "notification"))
}

func RegisterWorkers(lc fx.Lifecycle, cfg *config.Config, q notification.Service) {
	workers := cfg.Notification.Workers
	if workers <= 0 {
		workers = 2
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			q.Start(workers)
			slog.Info("notification workers started", "workers", workers)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// drains what is queued, bounded by the fx stop timeout
			return q.Stop(ctx)
		},
	})
}
