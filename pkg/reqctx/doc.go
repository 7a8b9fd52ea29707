// Package reqctx carries request-scoped values through context.Context.
//
// HTTP middleware sets RequestMeta for every request, AuthClaims once a
// bearer token has been verified, and an Actor once the caller's roles and
// linked client or therapist records are known. Services read the Actor to
// decide ownership; they never look at fiber locals directly.
package reqctx
