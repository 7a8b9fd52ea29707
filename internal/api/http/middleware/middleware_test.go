package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/mindbook_backend/pkg/paseto"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

func seededAuth(t *testing.T) authorize.IAuthorization {
	t.Helper()
	policy := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(policy, nil, 0o644))

	m, err := authorize.LoadModel("")
	require.NoError(t, err)
	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(policy))
	require.NoError(t, err)
	e.EnableAutoSave(false)

	auth, err := authorize.NewAuthorization(e)
	require.NoError(t, err)
	require.NoError(t, authorize.SeedDefaultPolicies(context.Background(), auth))
	return auth
}

// fakeAuthenticator maps tokens to actors.
type fakeAuthenticator map[string]reqctx.Actor

func (f fakeAuthenticator) Authenticate(_ context.Context, tok string) (*pasetotoken.Claims, reqctx.Actor, error) {
	a, found := f[tok]
	if !found {
		return nil, reqctx.Actor{}, errors.New("bad token")
	}
	sid := uuid.New()
	return &pasetotoken.Claims{AccountID: a.AccountID, SessionID: &sid, Type: pasetotoken.TokenTypeAccess}, a, nil
}

type fixture struct {
	app    *fiber.App
	tokens fakeAuthenticator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	auth := seededAuth(t)

	actors := fakeAuthenticator{}
	for tok, role := range map[string]authorize.Role{
		"client":    authorize.RoleClient,
		"therapist": authorize.RoleTherapist,
		"admin":     authorize.RoleAdmin,
	} {
		a := reqctx.Actor{AccountID: uuid.New(), Roles: []string{string(role)}}
		_, err := auth.AddRole(context.Background(), authorize.GroupSubject(a.AccountID.String()), role)
		require.NoError(t, err)
		actors[tok] = a
	}

	app := fiber.New()
	app.Use(RequestID(), Authenticate(actors))
	app.Get("/api/packages", RequirePermission(auth, authorize.ResourcePackage, authorize.ActionList), func(c fiber.Ctx) error {
		return c.SendString("packages")
	})
	app.Post("/api/packages", AuthRequired(), RequirePermission(auth, authorize.ResourcePackage, authorize.ActionCreate), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	app.Get("/api/whoami", AuthRequired(), func(c fiber.Ctx) error {
		a := reqctx.ActorFromContext(c.Context())
		if _, found := pasetotoken.ClaimsFromFiber(c); !found {
			return fiber.ErrInternalServerError
		}
		return c.SendString(a.AccountID.String())
	})
	app.Get("/admin/*", PageGuard(auth, authorize.ResourcePageAdmin), func(c fiber.Ctx) error {
		return c.SendString("admin shell")
	})
	app.Get("/client/*", PageGuard(auth, authorize.ResourcePageClient), func(c fiber.Ctx) error {
		return c.SendString("client shell")
	})
	return fixture{app: app, tokens: actors}
}

func (f fixture) request(t *testing.T, method, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRequirePermission(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous lists packages", http.MethodGet, "/api/packages", "", fiber.StatusOK},
		{"client lists packages", http.MethodGet, "/api/packages", "client", fiber.StatusOK},
		{"anonymous cannot create", http.MethodPost, "/api/packages", "", fiber.StatusUnauthorized},
		{"client cannot create", http.MethodPost, "/api/packages", "client", fiber.StatusForbidden},
		{"therapist cannot create", http.MethodPost, "/api/packages", "therapist", fiber.StatusForbidden},
		{"admin creates", http.MethodPost, "/api/packages", "admin", fiber.StatusCreated},
		{"bad token", http.MethodGet, "/api/packages", "forged", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.request(t, tt.method, tt.path, tt.token)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthenticatePutsActorInContext(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/api/whoami", "therapist")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	resp = f.request(t, http.MethodGet, "/api/whoami", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPageGuard(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		path     string
		token    string
		status   int
		location string
	}{
		{"anonymous goes to login", "/admin/dashboard", "", fiber.StatusFound, LoginPath},
		{"client bounced to own area", "/admin/dashboard", "client", fiber.StatusFound, "/client"},
		{"therapist bounced to own area", "/client/home", "therapist", fiber.StatusFound, "/therapist"},
		{"admin sees admin", "/admin/dashboard", "admin", fiber.StatusOK, ""},
		{"client sees client", "/client/home", "client", fiber.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.request(t, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get(fiber.HeaderLocation))
		})
	}
}

func TestPageGuardReadsCookie(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/client/home", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: "client"})
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
