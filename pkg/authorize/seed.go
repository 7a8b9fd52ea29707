package authorize

import (
	"context"
	"fmt"
	"log/slog"
)

func allow(role Role, obj Resource, act Action) PermissionPolicy {
	return PermissionPolicy{Subject: role, Domain: DomainSys, Object: obj, Action: act, Effect: EffectAllow}
}

// DefaultPolicies is the baseline permission table. Ownership (a client
// touching only their own sessions, a therapist only their own schedule) is
// checked by the services on top of this.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		allow(RoleAdmin, WildcardResource, WildcardAction),

		allow(RoleAnonymous, ResourceTherapist, ActionList),
		allow(RoleAnonymous, ResourceTherapist, ActionRead),
		allow(RoleAnonymous, ResourceAvailability, ActionRead),
		allow(RoleAnonymous, ResourcePackage, ActionList),
		allow(RoleAnonymous, ResourcePackage, ActionRead),

		allow(RoleClient, ResourceAccount, ActionRead),
		allow(RoleClient, ResourceUser, ActionRead),
		allow(RoleClient, ResourceUser, ActionUpdate),
		allow(RoleClient, ResourceOnboarding, ActionManage),
		allow(RoleClient, ResourceCallbackRequest, ActionCreate),
		allow(RoleClient, ResourceSchedule, ActionList),
		allow(RoleClient, ResourceSchedule, ActionRead),
		allow(RoleClient, ResourceSession, ActionManage),
		// the session service only lets a client cancel
		allow(RoleClient, ResourceSessionStatus, ActionUpdate),
		allow(RoleClient, ResourceAssignment, ActionRead),
		allow(RoleClient, ResourcePageClient, ActionView),

		allow(RoleTherapist, ResourceAccount, ActionRead),
		allow(RoleTherapist, ResourceTherapist, ActionCreate),
		allow(RoleTherapist, ResourceTherapist, ActionUpdate),
		allow(RoleTherapist, ResourceTherapist, ActionDelete),
		allow(RoleTherapist, ResourceUser, ActionRead),
		allow(RoleTherapist, ResourceSchedule, ActionManage),
		allow(RoleTherapist, ResourceSession, ActionList),
		allow(RoleTherapist, ResourceSession, ActionRead),
		allow(RoleTherapist, ResourceSessionStatus, ActionUpdate),
		allow(RoleTherapist, ResourceAssignment, ActionList),
		allow(RoleTherapist, ResourceAssignment, ActionRead),
		allow(RoleTherapist, ResourceReport, ActionManage),
		allow(RoleTherapist, ResourceClientDirectory, ActionList),
		allow(RoleTherapist, ResourcePageTherapist, ActionView),
	}
}

// SeedDefaultPolicies installs DefaultPolicies and the role hierarchy. It is
// idempotent.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	for _, p := range DefaultPolicies() {
		added, err := auth.AddPermission(ctx, p)
		if err != nil {
			return fmt.Errorf("seed policy %s %s %s: %w", p.Subject, p.Object, p.Action, err)
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "resource", p.Object, "action", p.Action)
		}
	}

	// client and therapist inherit anonymous grants; unauthenticated callers
	// are the anonymous subject.
	for _, sub := range []GroupSubject{GroupSubject(RoleClient), GroupSubject(RoleTherapist), AnonymousSubject} {
		if _, err := auth.AddRole(ctx, sub, RoleAnonymous); err != nil {
			return fmt.Errorf("seed role hierarchy for %s: %w", sub, err)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(DefaultPolicies()))
	return nil
}
