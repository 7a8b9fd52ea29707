package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	pasetotoken "github.com/Alijeyrad/mindbook_backend/pkg/paseto"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

// CookieAccessToken lets browser page loads carry the access token.
const CookieAccessToken = "access_token"

// Authenticator verifies an access token and resolves the caller behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*pasetotoken.Claims, reqctx.Actor, error)
}

func accessToken(c fiber.Ctx) (string, bool) {
	if tok, ok := pasetotoken.BearerToken(c); ok {
		return tok, true
	}
	tok := c.Cookies(CookieAccessToken)
	return tok, tok != ""
}

// Authenticate resolves the caller when a token is present. Requests without
// one continue as anonymous; a token that fails verification is rejected.
// On success the claims go to c.Locals and both claims and Actor go to the
// request context.
func Authenticate(auth Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		tok, ok := accessToken(c)
		if !ok {
			return c.Next()
		}

		claims, actor, err := auth.Authenticate(c.Context(), tok)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		ctx := reqctx.WithClaims(c.Context(), claims)
		c.SetContext(reqctx.WithActor(ctx, actor))
		return c.Next()
	}
}

// AuthRequired rejects anonymous callers. It must run after Authenticate.
func AuthRequired() fiber.Handler {
	return func(c fiber.Ctx) error {
		if reqctx.ActorFromContext(c.Context()).Anonymous() {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}
