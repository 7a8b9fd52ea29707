package authorize

import (
	"context"
	"log/slog"
	"time"

	casbin "github.com/casbin/casbin/v2"

	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

// AuditedAuthorization logs every decision and every policy change.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{inner: inner, logger: logger}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject GroupSubject, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, object, action)

	attrs := []any{
		"request_id", reqctx.RequestIDFromContext(ctx),
		"subject", string(subject),
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	}

	switch {
	case err != nil:
		a.logger.Error("authz_decision", append(attrs, "error", err.Error())...)
	case allowed:
		a.logger.Debug("authz_decision", attrs...)
	default:
		a.logger.Warn("authz_decision", attrs...)
	}

	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject GroupSubject, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *AuditedAuthorization) AddRole(ctx context.Context, subject GroupSubject, role Role) (bool, error) {
	added, err := a.inner.AddRole(ctx, subject, role)
	a.logChange(ctx, "add_role", err, "subject", string(subject), "role", string(role), "changed", added)
	return added, err
}

func (a *AuditedAuthorization) RemoveRole(ctx context.Context, subject GroupSubject, role Role) (bool, error) {
	removed, err := a.inner.RemoveRole(ctx, subject, role)
	a.logChange(ctx, "remove_role", err, "subject", string(subject), "role", string(role), "changed", removed)
	return removed, err
}

func (a *AuditedAuthorization) Roles(ctx context.Context, subject GroupSubject) ([]Role, error) {
	return a.inner.Roles(ctx, subject)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	added, err := a.inner.AddPermission(ctx, p)
	a.logChange(ctx, "add_permission", err, permissionAttrs(p, added)...)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, p)
	a.logChange(ctx, "remove_permission", err, permissionAttrs(p, removed)...)
	return removed, err
}

func (a *AuditedAuthorization) Raw() *casbin.DistributedEnforcer {
	return a.inner.Raw()
}

func (a *AuditedAuthorization) logChange(ctx context.Context, op string, err error, attrs ...any) {
	attrs = append([]any{"operation", op, "request_id", reqctx.RequestIDFromContext(ctx)}, attrs...)
	if err != nil {
		a.logger.Error("authz_policy_change", append(attrs, "error", err.Error())...)
		return
	}
	a.logger.Info("authz_policy_change", attrs...)
}

func permissionAttrs(p PermissionPolicy, changed bool) []any {
	return []any{
		"role", string(p.Subject),
		"resource", string(p.Object),
		"action", string(p.Action),
		"effect", string(p.Effect),
		"changed", changed,
	}
}
