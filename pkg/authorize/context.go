package authorize

import (
	"context"

	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

// SubjectFromContext is the casbin subject for the current caller:
// the account id, or AnonymousSubject when there is no verified token.
func SubjectFromContext(ctx context.Context) GroupSubject {
	if a := reqctx.ActorFromContext(ctx); !a.Anonymous() {
		return GroupSubject(a.AccountID.String())
	}
	if claims := reqctx.ClaimsFromContext(ctx); claims != nil && !claims.IsExpired() {
		return GroupSubject(claims.Account().String())
	}
	return AnonymousSubject
}

// IsAdmin reports whether the actor holds role:admin.
func IsAdmin(a reqctx.Actor) bool {
	return a.HasRole(string(RoleAdmin))
}

func IsTherapist(a reqctx.Actor) bool {
	return a.HasRole(string(RoleTherapist))
}

func IsClient(a reqctx.Actor) bool {
	return a.HasRole(string(RoleClient))
}
