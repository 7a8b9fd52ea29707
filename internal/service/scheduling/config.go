package scheduling

import (
	"time"

	"github.com/Alijeyrad/mindbook_backend/config"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

// Config is shared by the schedule and session services.
type Config struct {
	Policy      slot.Policy
	LockTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{Policy: slot.DefaultPolicy, LockTimeout: 5 * time.Second}
}

func FromCentralConfig(c config.SchedulingConfig) Config {
	return Config{
		Policy:      slot.Policy{TouchingConflicts: c.TouchingIsConflict},
		LockTimeout: time.Duration(c.LockTimeoutSeconds) * time.Second,
	}
}
