package authorize

import "github.com/Alijeyrad/mindbook_backend/config"

type Config struct {
	// ModelPath is optional; DefaultModel is used when empty.
	ModelPath string

	// EnableAudit logs every decision through slog.
	EnableAudit bool

	// AdminBypass lets role:admin skip the policy lookup entirely.
	AdminBypass bool

	// PolicySync listens on a postgres channel so every instance reloads
	// policies after a change.
	PolicySync bool

	HealthCheckEnabled bool
}

func DefaultConfig() Config {
	return Config{
		EnableAudit:        true,
		AdminBypass:        true,
		PolicySync:         false,
		HealthCheckEnabled: true,
	}
}

func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		ModelPath:          c.CasbinModelPath,
		EnableAudit:        c.EnableAudit,
		AdminBypass:        c.SuperadminBypass,
		PolicySync:         c.PolicySyncEnabled,
		HealthCheckEnabled: c.HealthCheckEnabled,
	}
}
