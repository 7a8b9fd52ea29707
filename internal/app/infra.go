package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/mindbook_backend/config"
	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/internal/schema"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/database"
	"github.com/Alijeyrad/mindbook_backend/pkg/email"
	"github.com/Alijeyrad/mindbook_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/mindbook_backend/pkg/paseto"
	redispkg "github.com/Alijeyrad/mindbook_backend/pkg/redis"
	"github.com/Alijeyrad/mindbook_backend/pkg/sms"
	"github.com/Alijeyrad/mindbook_backend/pkg/util/password"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideDB),
	fx.Provide(ProvideRepo),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideSessionStore),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideBookingMetrics),
	fx.Provide(ProvidePasetoManager),
	fx.Provide(ProvidePasswordHasher),
)

func ProvideDB(lc fx.Lifecycle, cfg *config.Config) (*sqlx.DB, error) {
	dbCfg := database.FromCentralConfig(cfg.Database)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !dbCfg.AutoMigrate {
				return nil
			}
			slog.Info("applying table definitions")
			return database.Migrate(ctx, db, schema.TableDefinitions)
		},
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return db.Close()
		},
	})
	return db, nil
}

func ProvideRepo(db *sqlx.DB, cfg *config.Config) *repo.Client {
	threshold := time.Duration(database.FromCentralConfig(cfg.Database).SlowQueryThresholdMs) * time.Millisecond
	return repo.NewLoggedClient(db, slog.Default(), threshold)
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideSessionStore(rdb *redis.Client) *redispkg.SessionStore {
	return redispkg.NewSessionStore(rdb)
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	authCfg := authorize.FromCentralConfig(cfg.Authorization)
	enforcer, cleanup, err := authorize.NewEnforcer(authCfg, database.NewDSN(cfg.CasbinDatabase))
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer, authorize.WithAdminBypass(authCfg.AdminBypass))
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if authCfg.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS, cfg.Notification.DefaultRegion)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideBookingMetrics takes the provider so the instruments are created on
// the configured meter rather than the global no-op one.
func ProvideBookingMetrics(_ *observability.Provider) *observability.BookingMetrics {
	return observability.NewBookingMetrics()
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvidePasswordHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg))
}
