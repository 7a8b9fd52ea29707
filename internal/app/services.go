package app

import (
	"go.uber.org/fx"

	"github.com/Alijeyrad/mindbook_backend/config"
	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/internal/service/assignment"
	"github.com/Alijeyrad/mindbook_backend/internal/service/auth"
	"github.com/Alijeyrad/mindbook_backend/internal/service/notification"
	"github.com/Alijeyrad/mindbook_backend/internal/service/onboarding"
	"github.com/Alijeyrad/mindbook_backend/internal/service/pricing"
	"github.com/Alijeyrad/mindbook_backend/internal/service/report"
	"github.com/Alijeyrad/mindbook_backend/internal/service/scheduling"
	"github.com/Alijeyrad/mindbook_backend/internal/service/session"
	"github.com/Alijeyrad/mindbook_backend/internal/service/therapist"
	"github.com/Alijeyrad/mindbook_backend/internal/service/user"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/mindbook_backend/pkg/paseto"
	"github.com/Alijeyrad/mindbook_backend/pkg/redis"
	"github.com/Alijeyrad/mindbook_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideSchedulingConfig,
		ProvideAuthService,
		ProvideUserService,
		ProvideTherapistService,
		ProvideSchedulingService,
		ProvideSessionService,
		ProvideAssignmentService,
		ProvideReportService,
		ProvidePricingService,
		ProvideOnboardingService,
	),
)

func ProvideSchedulingConfig(cfg *config.Config) scheduling.Config {
	return scheduling.FromCentralConfig(cfg.Scheduling)
}

func ProvideAuthService(
	db *repo.Client,
	sessions *redis.SessionStore,
	paseto *pasetotoken.Manager,
	hasher *password.Hasher,
	authz authorize.IAuthorization,
	cfg *config.Config,
) auth.Service {
	return auth.New(db, sessions, paseto, hasher, authz, cfg.Notification.DefaultRegion)
}

func ProvideUserService(
	db *repo.Client,
	hasher *password.Hasher,
	authz authorize.IAuthorization,
	sessions *redis.SessionStore,
	notify notification.Publisher,
	cfg *config.Config,
) user.Service {
	return user.New(db, hasher, authz, sessions, notify, cfg.Notification.DefaultRegion)
}

func ProvideTherapistService(db *repo.Client, authz authorize.IAuthorization) therapist.Service {
	return therapist.New(db, authz)
}

func ProvideSchedulingService(db *repo.Client, sc scheduling.Config, m *observability.BookingMetrics) scheduling.Service {
	return scheduling.New(db, sc, m)
}

func ProvideSessionService(
	db *repo.Client,
	sc scheduling.Config,
	notify notification.Publisher,
	m *observability.BookingMetrics,
) session.Service {
	return session.New(db, sc, notify, m)
}

func ProvideAssignmentService(db *repo.Client, notify notification.Publisher) assignment.Service {
	return assignment.New(db, notify)
}

func ProvideReportService(db *repo.Client, m *observability.BookingMetrics) report.Service {
	return report.New(db, m)
}

func ProvidePricingService(db *repo.Client) pricing.Service {
	return pricing.New(db)
}

func ProvideOnboardingService(db *repo.Client) onboarding.Service {
	return onboarding.New(db)
}
