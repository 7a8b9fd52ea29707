package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/mindbook_backend/pkg/paseto"
	"github.com/Alijeyrad/mindbook_backend/pkg/redis"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
	"github.com/Alijeyrad/mindbook_backend/pkg/sms"
	"github.com/Alijeyrad/mindbook_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type LoginRequest struct {
	Email    string
	Password string
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Me is the caller's account with the profile rows linked to it.
type Me struct {
	Account   *repo.Account   `json:"account"`
	Roles     []string        `json:"roles"`
	Client    *repo.User      `json:"client,omitempty"`
	Therapist *repo.Therapist `json:"therapist,omitempty"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthTokens, error)
	Login(ctx context.Context, req LoginRequest) (*AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, accountID, sessionID uuid.UUID) error

	// Authenticate checks an access token against the live session and
	// resolves the caller.
	Authenticate(ctx context.Context, accessToken string) (*pasetotoken.Claims, reqctx.Actor, error)
	ResolveActor(ctx context.Context, accountID uuid.UUID) (reqctx.Actor, error)
	Me(ctx context.Context) (*Me, error)

	GrantRole(ctx context.Context, accountID uuid.UUID, role string) error
	RevokeRole(ctx context.Context, accountID uuid.UUID, role string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	db       *repo.Client
	sessions *redis.SessionStore
	paseto   *pasetotoken.Manager
	hasher   *password.Hasher
	authz    authorize.IAuthorization
	region   string
}

func New(
	db *repo.Client,
	sessions *redis.SessionStore,
	paseto *pasetotoken.Manager,
	hasher *password.Hasher,
	authz authorize.IAuthorization,
	region string,
) Service {
	return &authService{
		db:       db,
		sessions: sessions,
		paseto:   paseto,
		hasher:   hasher,
		authz:    authz,
		region:   region,
	}
}

// NormalizeEmail lower-cases and validates an address.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", ErrInvalidEmail
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthTokens, error) {
	addr, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Check(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordTooShort, err)
	}

	phone := strings.TrimSpace(req.Phone)
	if phone != "" {
		if phone, err = sms.Normalize(phone, s.region); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &repo.Account{Email: addr, PasswordHash: hash, IsActive: true}
	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Accounts.Create(ctx, acc); err != nil {
			return err
		}
		return tx.Users.Create(ctx, &repo.User{
			AccountID: &acc.ID,
			Name:      strings.TrimSpace(req.Name),
			Email:     addr,
			Phone:     phone,
			IsActive:  true,
		})
	})
	if repo.IsUniqueViolation(err) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if _, err := s.authz.AddRole(ctx, authorize.GroupSubject(acc.ID.String()), authorize.RoleClient); err != nil {
		return nil, fmt.Errorf("grant client role: %w", err)
	}

	return s.createSession(ctx, acc.ID)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	acc, err := s.db.Accounts.GetByEmail(ctx, req.Email)
	if repo.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := s.hasher.Verify(acc.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return nil, ErrAccountDisabled
	}

	if s.hasher.NeedsRehash(acc.PasswordHash) {
		if h, err := s.hasher.Hash(req.Password); err == nil {
			if err := s.db.Accounts.SetPassword(ctx, acc.ID, h); err != nil {
				slog.WarnContext(ctx, "rehash password failed", "account_id", acc.ID, "error", err)
			}
		}
	}
	if err := s.db.Accounts.TouchLogin(ctx, acc.ID, time.Now().UTC()); err != nil {
		slog.WarnContext(ctx, "record login failed", "account_id", acc.ID, "error", err)
	}

	return s.createSession(ctx, acc.ID)
}

// ---------------------------------------------------------------------------
// Tokens and sessions
// ---------------------------------------------------------------------------

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.paseto.Verify(refreshToken)
	if err != nil || !claims.IsRefresh() || claims.SessionID == nil {
		return nil, ErrInvalidToken
	}

	owner, err := s.sessions.Account(ctx, *claims.SessionID)
	if errors.Is(err, redis.ErrSessionNotFound) || (err == nil && owner != claims.AccountID) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Touch(ctx, *claims.SessionID, s.paseto.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("extend session: %w", err)
	}

	// the refresh token stays the same until logout
	access, err := s.paseto.IssueAccess(claims.AccountID, *claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, accountID, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID, accountID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*pasetotoken.Claims, reqctx.Actor, error) {
	claims, err := s.paseto.Verify(accessToken)
	if err != nil || !claims.IsAccess() || claims.SessionID == nil {
		return nil, reqctx.Actor{}, ErrInvalidToken
	}

	owner, err := s.sessions.Account(ctx, *claims.SessionID)
	if errors.Is(err, redis.ErrSessionNotFound) || (err == nil && owner != claims.AccountID) {
		return nil, reqctx.Actor{}, ErrSessionNotFound
	}
	if err != nil {
		return nil, reqctx.Actor{}, err
	}

	actor, err := s.ResolveActor(ctx, claims.AccountID)
	if err != nil {
		return nil, reqctx.Actor{}, err
	}
	return claims, actor, nil
}

func (s *authService) createSession(ctx context.Context, accountID uuid.UUID) (*AuthTokens, error) {
	sid := uuid.Must(uuid.NewV7())

	if err := s.sessions.Create(ctx, sid, accountID, s.paseto.RefreshTTL()); err != nil {
		return nil, err
	}

	access, err := s.paseto.IssueAccess(accountID, sid)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.paseto.IssueRefresh(accountID, sid)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
	}, nil
}

// ---------------------------------------------------------------------------
// Actor resolution
// ---------------------------------------------------------------------------

type linked struct {
	account   *repo.Account
	roles     []string
	client    *repo.User
	therapist *repo.Therapist
}

// load fetches the account, its roles and both profile rows concurrently.
func (s *authService) load(ctx context.Context, accountID uuid.UUID) (*linked, error) {
	var out linked
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		acc, err := s.db.Accounts.Get(gctx, accountID)
		if repo.IsNotFound(err) {
			return ErrAccountNotFound
		}
		out.account = acc
		return err
	})
	g.Go(func() error {
		roles, err := s.authz.Roles(gctx, authorize.GroupSubject(accountID.String()))
		for _, r := range roles {
			out.roles = append(out.roles, string(r))
		}
		return err
	})
	g.Go(func() error {
		u, err := s.db.Users.GetByAccount(gctx, accountID)
		if repo.IsNotFound(err) {
			return nil
		}
		out.client = u
		return err
	})
	g.Go(func() error {
		t, err := s.db.Therapists.GetByUserID(gctx, accountID)
		if repo.IsNotFound(err) {
			return nil
		}
		out.therapist = t
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *authService) ResolveActor(ctx context.Context, accountID uuid.UUID) (reqctx.Actor, error) {
	l, err := s.load(ctx, accountID)
	if err != nil {
		return reqctx.Actor{}, err
	}
	if !l.account.IsActive {
		return reqctx.Actor{}, ErrAccountDisabled
	}

	a := reqctx.Actor{AccountID: l.account.ID, Email: l.account.Email, Roles: l.roles}
	if l.client != nil && l.client.IsActive {
		a.ClientUID = &l.client.UID
	}
	if l.therapist != nil {
		a.TherapistID = &l.therapist.TID
	}
	return a, nil
}

func (s *authService) Me(ctx context.Context) (*Me, error) {
	actor := reqctx.ActorFromContext(ctx)
	if actor.Anonymous() {
		return nil, ErrAccountNotFound
	}
	l, err := s.load(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	roles := l.roles
	if roles == nil {
		roles = []string{}
	}
	return &Me{Account: l.account, Roles: roles, Client: l.client, Therapist: l.therapist}, nil
}

// ---------------------------------------------------------------------------
// Roles
// ---------------------------------------------------------------------------

func (s *authService) assignable(name string) (authorize.Role, error) {
	role, ok := authorize.RoleFromName(name)
	if !ok {
		return "", ErrUnknownRole
	}
	if _, ok := authorize.AssignableRoles[role]; !ok {
		return "", ErrUnknownRole
	}
	return role, nil
}

func (s *authService) GrantRole(ctx context.Context, accountID uuid.UUID, name string) error {
	if !authorize.IsAdmin(reqctx.ActorFromContext(ctx)) {
		return ErrForbidden
	}
	role, err := s.assignable(name)
	if err != nil {
		return err
	}
	if _, err := s.db.Accounts.Get(ctx, accountID); err != nil {
		if repo.IsNotFound(err) {
			return ErrAccountNotFound
		}
		return err
	}
	if _, err := s.authz.AddRole(ctx, authorize.GroupSubject(accountID.String()), role); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (s *authService) RevokeRole(ctx context.Context, accountID uuid.UUID, name string) error {
	if !authorize.IsAdmin(reqctx.ActorFromContext(ctx)) {
		return ErrForbidden
	}
	role, err := s.assignable(name)
	if err != nil {
		return err
	}
	if _, err := s.authz.RemoveRole(ctx, authorize.GroupSubject(accountID.String()), role); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}
