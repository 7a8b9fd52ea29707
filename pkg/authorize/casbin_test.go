package authorize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

// createTestEnforcer builds an enforcer on the default model with an empty
// policy file.
func createTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	policyPath := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(policyPath, nil, 0o644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	m, err := LoadModel("")
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}

	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(policyPath))
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}
	e.EnableAutoSave(false)
	e.EnableEnforce(true)

	return e
}

func seededAuth(t *testing.T) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(createTestEnforcer(t))
	if err != nil {
		t.Fatalf("NewAuthorization() error = %v", err)
	}
	if err := SeedDefaultPolicies(context.Background(), auth); err != nil {
		t.Fatalf("SeedDefaultPolicies() error = %v", err)
	}
	return auth
}

func TestNewAuthorization(t *testing.T) {
	if _, err := NewAuthorization(nil); err == nil {
		t.Error("expected error for nil enforcer")
	}
	if _, err := NewAuthorization(createTestEnforcer(t)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEnforce_DefaultPolicies(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	client := GroupSubject(uuid.NewString())
	therapist := GroupSubject(uuid.NewString())
	admin := GroupSubject(uuid.NewString())

	for sub, role := range map[GroupSubject]Role{client: RoleClient, therapist: RoleTherapist, admin: RoleAdmin} {
		if _, err := auth.AddRole(ctx, sub, role); err != nil {
			t.Fatalf("AddRole(%s) error = %v", role, err)
		}
	}

	tests := []struct {
		name     string
		subject  GroupSubject
		resource Resource
		action   Action
		want     bool
	}{
		{"anonymous lists therapists", AnonymousSubject, ResourceTherapist, ActionList, true},
		{"anonymous reads packages", AnonymousSubject, ResourcePackage, ActionRead, true},
		{"anonymous cannot book", AnonymousSubject, ResourceSession, ActionCreate, false},
		{"anonymous cannot create package", AnonymousSubject, ResourcePackage, ActionCreate, false},
		{"client inherits anonymous", client, ResourceTherapist, ActionRead, true},
		{"client books via manage", client, ResourceSession, ActionCreate, true},
		{"client cannot write reports", client, ResourceReport, ActionCreate, false},
		{"client reaches session status", client, ResourceSessionStatus, ActionUpdate, true},
		{"client cannot list users", client, ResourceUser, ActionList, false},
		{"client views client pages", client, ResourcePageClient, ActionView, true},
		{"client cannot view admin pages", client, ResourcePageAdmin, ActionView, false},
		{"therapist writes reports", therapist, ResourceReport, ActionCreate, true},
		{"therapist manages schedule", therapist, ResourceSchedule, ActionDelete, true},
		{"therapist cannot create assignments", therapist, ResourceAssignment, ActionCreate, false},
		{"therapist cannot create packages", therapist, ResourcePackage, ActionCreate, false},
		{"admin creates packages", admin, ResourcePackage, ActionCreate, true},
		{"admin grants roles", admin, ResourceRBAC, ActionGrant, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Enforce(ctx, tt.subject, tt.resource, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.subject, tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforce_InvalidArgs(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		subject  GroupSubject
		resource Resource
		action   Action
	}{
		{"empty subject", "", ResourceUser, ActionRead},
		{"unknown resource", AnonymousSubject, Resource("wallet"), ActionRead},
		{"unknown action", AnonymousSubject, ResourceUser, Action("archive")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Enforce(ctx, tt.subject, tt.resource, tt.action); !errors.Is(err, ErrInvalidArgs) {
				t.Errorf("Enforce() error = %v, want ErrInvalidArgs", err)
			}
		})
	}
}

func TestMustEnforce(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	if err := auth.MustEnforce(ctx, AnonymousSubject, ResourceTherapist, ActionList); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := auth.MustEnforce(ctx, AnonymousSubject, ResourceUser, ActionDelete); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestAdminBypass(t *testing.T) {
	// No policies at all: only the bypass can allow this.
	e := createTestEnforcer(t)
	ctx := context.Background()
	admin := GroupSubject(uuid.NewString())

	withBypass, _ := NewAuthorization(e)
	if _, err := withBypass.AddRole(ctx, admin, RoleAdmin); err != nil {
		t.Fatalf("AddRole() error = %v", err)
	}
	if ok, _ := withBypass.Enforce(ctx, admin, ResourceUser, ActionDelete); !ok {
		t.Error("expected admin bypass to allow")
	}

	without, _ := NewAuthorization(e, WithAdminBypass(false))
	if ok, _ := without.Enforce(ctx, admin, ResourceUser, ActionDelete); ok {
		t.Error("expected deny without bypass and without policies")
	}
}

func TestRoleManagement(t *testing.T) {
	auth, _ := NewAuthorization(createTestEnforcer(t))
	ctx := context.Background()
	sub := GroupSubject(uuid.NewString())

	added, err := auth.AddRole(ctx, sub, RoleTherapist)
	if err != nil || !added {
		t.Fatalf("AddRole() = %v, %v", added, err)
	}

	roles, err := auth.Roles(ctx, sub)
	if err != nil {
		t.Fatalf("Roles() error = %v", err)
	}
	if len(roles) != 1 || roles[0] != RoleTherapist {
		t.Errorf("Roles() = %v, want [%s]", roles, RoleTherapist)
	}

	removed, err := auth.RemoveRole(ctx, sub, RoleTherapist)
	if err != nil || !removed {
		t.Fatalf("RemoveRole() = %v, %v", removed, err)
	}
	if roles, _ := auth.Roles(ctx, sub); len(roles) != 0 {
		t.Errorf("Roles() after removal = %v", roles)
	}

	if _, err := auth.AddRole(ctx, sub, Role("role:owner")); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("expected ErrInvalidArgs for unknown role, got %v", err)
	}
}

func TestPermissionManagement(t *testing.T) {
	auth, _ := NewAuthorization(createTestEnforcer(t))
	ctx := context.Background()
	p := allow(RoleClient, ResourceReport, ActionRead)

	if added, err := auth.AddPermission(ctx, p); err != nil || !added {
		t.Fatalf("AddPermission() = %v, %v", added, err)
	}
	if removed, err := auth.RemovePermission(ctx, p); err != nil || !removed {
		t.Fatalf("RemovePermission() = %v, %v", removed, err)
	}

	p.Effect = PolicyEffect("maybe")
	if _, err := auth.AddPermission(ctx, p); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("expected ErrInvalidArgs for invalid effect, got %v", err)
	}
}

func TestSubjectFromContext(t *testing.T) {
	ctx := context.Background()
	if got := SubjectFromContext(ctx); got != AnonymousSubject {
		t.Errorf("SubjectFromContext() = %q, want anonymous", got)
	}

	id := uuid.New()
	ctx = reqctx.WithActor(ctx, reqctx.Actor{AccountID: id, Roles: []string{string(RoleAdmin)}})
	if got := SubjectFromContext(ctx); got != GroupSubject(id.String()) {
		t.Errorf("SubjectFromContext() = %q, want %s", got, id)
	}
	if !IsAdmin(reqctx.ActorFromContext(ctx)) {
		t.Error("IsAdmin() = false, want true")
	}
}

type tokenClaims struct {
	account uuid.UUID
	expired bool
}

func (c tokenClaims) Account() uuid.UUID { return c.account }
func (c tokenClaims) IsExpired() bool { return c.expired }

func TestSubjectFromClaimsOnly(t *testing.T) {
	id := uuid.New()

	ctx := reqctx.WithClaims(context.Background(), tokenClaims{account: id})
	if got := SubjectFromContext(ctx); got != GroupSubject(id.String()) {
		t.Errorf("SubjectFromContext() = %q, want %s", got, id)
	}

	ctx = reqctx.WithClaims(context.Background(), tokenClaims{account: id, expired: true})
	if got := SubjectFromContext(ctx); got != AnonymousSubject {
		t.Errorf("SubjectFromContext() = %q for expired claims, want anonymous", got)
	}
}

func TestRoleFromName(t *testing.T) {
	for _, in := range []string{"admin", "role:admin"} {
		if r, ok := RoleFromName(in); !ok || r != RoleAdmin {
			t.Errorf("RoleFromName(%q) = %q, %v", in, r, ok)
		}
	}
	if _, ok := RoleFromName("owner"); ok {
		t.Error("RoleFromName(owner) should fail")
	}
}
