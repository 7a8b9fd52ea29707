package reqctx

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// AuthClaims is what the authorizer needs from a verified token when no Actor
// has been resolved yet.
type AuthClaims interface {
	Account() uuid.UUID
	IsExpired() bool
}

func WithClaims(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

func ClaimsFromContext(ctx context.Context) AuthClaims {
	claims, _ := ctx.Value(keyClaims).(AuthClaims)
	return claims
}

func IsAuthenticated(ctx context.Context) bool {
	claims := ClaimsFromContext(ctx)
	return claims != nil && !claims.IsExpired()
}

// Actor is the resolved caller: an account plus the roles and profile rows
// linked to it. The zero Actor is anonymous.
type Actor struct {
	AccountID   uuid.UUID
	Email       string
	Roles       []string
	ClientUID   *uuid.UUID
	TherapistID *uuid.UUID
}

func (a Actor) Anonymous() bool { return a.AccountID == uuid.Nil }

func (a Actor) HasRole(role string) bool { return slices.Contains(a.Roles, role) }

// IsClient reports whether the actor owns the given client record.
func (a Actor) IsClient(uid uuid.UUID) bool {
	return a.ClientUID != nil && *a.ClientUID == uid
}

// IsTherapist reports whether the actor owns the given therapist record.
func (a Actor) IsTherapist(tid uuid.UUID) bool {
	return a.TherapistID != nil && *a.TherapistID == tid
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

// ActorFromContext returns the anonymous Actor when none is set.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(keyActor).(Actor)
	return a
}
