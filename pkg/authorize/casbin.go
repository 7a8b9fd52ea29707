package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// IAuthorization is the only thing services and middleware depend on.
type IAuthorization interface {
	// Enforce answers: may subject perform action on object?
	Enforce(ctx context.Context, subject GroupSubject, object Resource, action Action) (bool, error)

	// MustEnforce returns ErrForbidden when Enforce says no.
	MustEnforce(ctx context.Context, subject GroupSubject, object Resource, action Action) error

	AddRole(ctx context.Context, subject GroupSubject, role Role) (bool, error)
	RemoveRole(ctx context.Context, subject GroupSubject, role Role) (bool, error)
	Roles(ctx context.Context, subject GroupSubject) ([]Role, error)

	AddPermission(ctx context.Context, p PermissionPolicy) (bool, error)
	RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error)

	Raw() *casbin.DistributedEnforcer
}

type Authorization struct {
	enforcer   *casbin.DistributedEnforcer
	bypassRole Role
}

type Option func(*Authorization)

// WithAdminBypass lets subjects holding role:admin skip policy evaluation.
func WithAdminBypass(enabled bool) Option {
	return func(a *Authorization) {
		if enabled {
			a.bypassRole = RoleAdmin
		} else {
			a.bypassRole = ""
		}
	}
}

// NewAuthorization wraps an already configured enforcer and loads policies.
func NewAuthorization(e *casbin.DistributedEnforcer, opts ...Option) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	a := &Authorization{enforcer: e, bypassRole: RoleAdmin}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Authorization) Raw() *casbin.DistributedEnforcer { return a.enforcer }

func (a *Authorization) Enforce(_ context.Context, subject GroupSubject, object Resource, action Action) (bool, error) {
	if subject == "" {
		return false, fmt.Errorf("%w: subject is empty", ErrInvalidArgs)
	}
	if err := checkObjectAction(object, action); err != nil {
		return false, err
	}

	if a.bypassRole != "" {
		ok, err := a.enforcer.HasRoleForUser(string(subject), string(a.bypassRole), string(DomainSys))
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return a.enforcer.Enforce(string(subject), string(DomainSys), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, subject GroupSubject, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// ---- Grouping (roles) ----

func (a *Authorization) AddRole(_ context.Context, subject GroupSubject, role Role) (bool, error) {
	if err := checkSubjectRole(subject, role); err != nil {
		return false, err
	}
	return a.enforcer.AddGroupingPolicy(string(subject), string(role), string(DomainSys))
}

func (a *Authorization) RemoveRole(_ context.Context, subject GroupSubject, role Role) (bool, error) {
	if err := checkSubjectRole(subject, role); err != nil {
		return false, err
	}
	return a.enforcer.RemoveGroupingPolicy(string(subject), string(role), string(DomainSys))
}

// Roles returns the roles granted directly to subject.
func (a *Authorization) Roles(_ context.Context, subject GroupSubject) ([]Role, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is empty", ErrInvalidArgs)
	}
	names := a.enforcer.GetRolesForUserInDomain(string(subject), string(DomainSys))
	out := make([]Role, 0, len(names))
	for _, n := range names {
		out = append(out, Role(n))
	}
	return out, nil
}

// ---- Permissions (p rules) ----

func (a *Authorization) AddPermission(_ context.Context, p PermissionPolicy) (bool, error) {
	if err := checkPermission(p); err != nil {
		return false, err
	}
	return a.enforcer.AddPolicy(string(p.Subject), string(p.Domain), string(p.Object), string(p.Action), string(p.Effect))
}

func (a *Authorization) RemovePermission(_ context.Context, p PermissionPolicy) (bool, error) {
	if err := checkPermission(p); err != nil {
		return false, err
	}
	return a.enforcer.RemovePolicy(string(p.Subject), string(p.Domain), string(p.Object), string(p.Action), string(p.Effect))
}

// ---- validation ----

func checkObjectAction(object Resource, action Action) error {
	if _, ok := KnownResources[object]; !ok && object != WildcardResource {
		return fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if _, ok := KnownActions[action]; !ok && action != WildcardAction {
		return fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}
	return nil
}

func checkSubjectRole(subject GroupSubject, role Role) error {
	if subject == "" {
		return fmt.Errorf("%w: subject is empty", ErrInvalidArgs)
	}
	if _, ok := KnownRoles[role]; !ok {
		return fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, role)
	}
	return nil
}

func checkPermission(p PermissionPolicy) error {
	if _, ok := KnownRoles[p.Subject]; !ok && p.Subject != WildcardRole {
		return fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, p.Subject)
	}
	if !IsValidDomain(p.Domain) {
		return fmt.Errorf("%w: invalid domain: %q", ErrInvalidArgs, p.Domain)
	}
	if p.Effect != EffectAllow && p.Effect != EffectDeny {
		return fmt.Errorf("%w: invalid effect: %q", ErrInvalidArgs, p.Effect)
	}
	return checkObjectAction(p.Object, p.Action)
}
