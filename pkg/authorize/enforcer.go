package authorize

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	psqlwatcher "github.com/IguteChung/casbin-psql-watcher"
	casbin "github.com/casbin/casbin/v2"
	entadapter "github.com/casbin/ent-adapter"
)

const policyChannel = "mindbook_policy_update"

// policyLoadHealthy goes false when a watcher-triggered reload fails, which
// turns the readiness probe red until the next successful reload.
var policyLoadHealthy atomic.Bool

func init() {
	policyLoadHealthy.Store(true)
}

func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

type CleanupFunc func(ctx context.Context)

// NewEnforcer builds a DistributedEnforcer backed by the casbin_rule table in
// the policy database. With cfg.PolicySync a LISTEN/NOTIFY watcher keeps
// every instance in step.
func NewEnforcer(cfg Config, dsn string) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	m, err := LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, nil, err
	}

	a, err := entadapter.NewAdapter("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("casbin adapter: %w", err)
	}

	e, err := casbin.NewDistributedEnforcer(m, a)
	if err != nil {
		return nil, nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	e.EnableAutoSave(true)
	e.EnableEnforce(true)

	if !cfg.PolicySync {
		return e, func(context.Context) {}, nil
	}

	w, err := psqlwatcher.NewWatcherWithConnString(context.Background(), dsn, psqlwatcher.Option{
		Channel: policyChannel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("casbin watcher: %w", err)
	}

	err = w.SetUpdateCallback(func(msg string) {
		slog.Debug("casbin policy update received", "message", msg)
		if err := e.LoadPolicy(); err != nil {
			slog.Error("policy reload failed", "error", err)
			policyLoadHealthy.Store(false)
			return
		}
		policyLoadHealthy.Store(true)
	})
	if err != nil {
		return nil, nil, err
	}
	if err := e.SetWatcher(w); err != nil {
		return nil, nil, err
	}

	cleanup := func(context.Context) {
		slog.Info("closing casbin policy watcher")
		w.Close()
	}

	return e, cleanup, nil
}
