package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/internal/service/auth"
	"github.com/Alijeyrad/mindbook_backend/internal/service/notification"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/redis"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
	"github.com/Alijeyrad/mindbook_backend/pkg/sms"
	"github.com/Alijeyrad/mindbook_backend/pkg/util/password"
)

type CreateRequest struct {
	Name  string
	Email string
	Phone string
}

type UpdateRequest struct {
	Name     *string
	Email    *string
	Phone    *string
	IsActive *bool
}

type ListFilter struct {
	Active            *bool
	CallRequestStatus string
}

type Service interface {
	List(ctx context.Context, f ListFilter) ([]*repo.User, error)
	Get(ctx context.Context, uid uuid.UUID) (*repo.User, error)
	Create(ctx context.Context, req CreateRequest) (*repo.User, error)
	Update(ctx context.Context, uid uuid.UUID, req UpdateRequest) (*repo.User, error)
	// Deactivate is the delete operation; rows are never removed.
	Deactivate(ctx context.Context, uid uuid.UUID) error

	RequestCallback(ctx context.Context, uid uuid.UUID, note string) (*repo.User, error)
	ListCallbackRequests(ctx context.Context) ([]*repo.User, error)

	// ClientsOfTherapist lists distinct clients seen by the therapist with that email.
	ClientsOfTherapist(ctx context.Context, therapistEmail string) ([]*repo.User, error)
}

type UserService struct {
	db       *repo.Client
	hasher   *password.Hasher
	authz    authorize.IAuthorization
	sessions *redis.SessionStore
	notify   notification.Publisher
	region   string
}

func New(
	db *repo.Client,
	hasher *password.Hasher,
	authz authorize.IAuthorization,
	sessions *redis.SessionStore,
	notify notification.Publisher,
	region string,
) *UserService {
	return &UserService{db: db, hasher: hasher, authz: authz, sessions: sessions, notify: notify, region: region}
}

func (s *UserService) phone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	p, err := sms.Normalize(raw, s.region)
	if err != nil {
		return "", ErrInvalidPhone
	}
	return p, nil
}

// canSee: admin, the client themself, or their assigned therapist.
func canSee(a reqctx.Actor, u *repo.User) bool {
	if authorize.IsAdmin(a) || a.IsClient(u.UID) {
		return true
	}
	return u.AssignedTID != nil && a.IsTherapist(*u.AssignedTID)
}

func (s *UserService) load(ctx context.Context, uid uuid.UUID) (*repo.User, error) {
	u, err := s.db.Users.Get(ctx, uid)
	if repo.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, f ListFilter) ([]*repo.User, error) {
	return s.db.Users.List(ctx, repo.UserFilter{Active: f.Active, CallRequestStatus: f.CallRequestStatus})
}

// Get returns inactive users as well.
func (s *UserService) Get(ctx context.Context, uid uuid.UUID) (*repo.User, error) {
	u, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !canSee(reqctx.ActorFromContext(ctx), u) {
		return nil, ErrForbidden
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, req CreateRequest) (*repo.User, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	addr, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	phone, err := s.phone(req.Phone)
	if err != nil {
		return nil, err
	}

	temp, err := s.hasher.Temporary()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(temp)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &repo.Account{Email: addr, PasswordHash: hash, IsActive: true}
	u := &repo.User{Name: strings.TrimSpace(req.Name), Email: addr, Phone: phone, IsActive: true}
	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Accounts.Create(ctx, acc); err != nil {
			return err
		}
		u.AccountID = &acc.ID
		return tx.Users.Create(ctx, u)
	})
	if repo.IsUniqueViolation(err) {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.authz.AddRole(ctx, authorize.GroupSubject(acc.ID.String()), authorize.RoleClient); err != nil {
		return nil, fmt.Errorf("grant client role: %w", err)
	}

	s.notify.Publish(ctx, notification.TemporaryPassword(u.Name, u.Email, temp, "client"))
	return u, nil
}

func (s *UserService) Update(ctx context.Context, uid uuid.UUID, req UpdateRequest) (*repo.User, error) {
	actor := reqctx.ActorFromContext(ctx)
	if !authorize.IsAdmin(actor) && !actor.IsClient(uid) {
		return nil, ErrForbidden
	}
	// only admins toggle activation
	if req.IsActive != nil && !authorize.IsAdmin(actor) {
		return nil, ErrForbidden
	}

	patch := repo.UserPatch{Name: req.Name, IsActive: req.IsActive}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.Email != nil {
		addr, err := auth.NormalizeEmail(*req.Email)
		if err != nil {
			return nil, ErrInvalidEmail
		}
		patch.Email = &addr
	}
	if req.Phone != nil {
		p, err := s.phone(*req.Phone)
		if err != nil {
			return nil, err
		}
		patch.Phone = &p
	}

	u, err := s.db.Users.Update(ctx, uid, patch)
	switch {
	case repo.IsNotFound(err):
		return nil, ErrUserNotFound
	case repo.IsUniqueViolation(err):
		return nil, ErrEmailAlreadyExists
	case err != nil:
		return nil, err
	}
	return u, nil
}

func (s *UserService) Deactivate(ctx context.Context, uid uuid.UUID) error {
	if !authorize.IsAdmin(reqctx.ActorFromContext(ctx)) {
		return ErrForbidden
	}
	u, err := s.load(ctx, uid)
	if err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Users.Deactivate(ctx, uid); err != nil {
			return err
		}
		if u.AccountID != nil {
			return tx.Accounts.SetActive(ctx, *u.AccountID, false)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	if u.AccountID != nil {
		if err := s.sessions.DeleteAll(ctx, *u.AccountID); err != nil {
			slog.WarnContext(ctx, "revoke sessions failed", "account_id", *u.AccountID, "error", err)
		}
	}
	return nil
}

func (s *UserService) RequestCallback(ctx context.Context, uid uuid.UUID, note string) (*repo.User, error) {
	actor := reqctx.ActorFromContext(ctx)
	if !authorize.IsAdmin(actor) && !actor.IsClient(uid) {
		return nil, ErrForbidden
	}
	if err := s.db.Users.SetCallRequestStatus(ctx, uid, repo.CallRequestPending); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.notify.Publish(ctx, notification.CallbackRequested(uid, note))
	return s.load(ctx, uid)
}

func (s *UserService) ListCallbackRequests(ctx context.Context) ([]*repo.User, error) {
	active := true
	return s.db.Users.List(ctx, repo.UserFilter{Active: &active, CallRequestStatus: repo.CallRequestPending})
}

func (s *UserService) ClientsOfTherapist(ctx context.Context, therapistEmail string) ([]*repo.User, error) {
	t, err := s.db.Therapists.GetByEmail(ctx, therapistEmail)
	if repo.IsNotFound(err) {
		return nil, ErrTherapistNotFound
	}
	if err != nil {
		return nil, err
	}

	actor := reqctx.ActorFromContext(ctx)
	if !authorize.IsAdmin(actor) && !actor.IsTherapist(t.TID) {
		return nil, ErrForbidden
	}
	return s.db.Users.ListSeenByTherapist(ctx, t.TID)
}

var _ Service = (*UserService)(nil)

