package therapist

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name              string
	Email             string
	Bio               string
	Education         string
	Languages         string
	AreasCovered      string
	AvailabilityHours string
	Image             string
	// UserID links a login account. Admins may set it; a therapist creating
	// their own profile is always linked to themself.
	UserID *uuid.UUID
}

type UpdateRequest struct {
	Name              *string
	Email             *string
	Bio               *string
	Education         *string
	Languages         *string
	AreasCovered      *string
	AvailabilityHours *string
	Image             *string
	UserID            *uuid.UUID
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context) ([]*repo.Therapist, error)
	Get(ctx context.Context, tid uuid.UUID) (*repo.Therapist, error)
	Create(ctx context.Context, req CreateRequest) (*repo.Therapist, error)
	Update(ctx context.Context, tid uuid.UUID, req UpdateRequest) (*repo.Therapist, error)
	Delete(ctx context.Context, tid uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type therapistService struct {
	db    *repo.Client
	authz authorize.IAuthorization
}

func New(db *repo.Client, authz authorize.IAuthorization) Service {
	return &therapistService{db: db, authz: authz}
}

func (s *therapistService) List(ctx context.Context) ([]*repo.Therapist, error) {
	return s.db.Therapists.List(ctx)
}

func (s *therapistService) Get(ctx context.Context, tid uuid.UUID) (*repo.Therapist, error) {
	t, err := s.db.Therapists.Get(ctx, tid)
	if repo.IsNotFound(err) {
		return nil, ErrTherapistNotFound
	}
	return t, err
}

func (s *therapistService) Create(ctx context.Context, req CreateRequest) (*repo.Therapist, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return nil, ErrNameRequired
	}

	actor := reqctx.ActorFromContext(ctx)
	userID := req.UserID
	if !authorize.IsAdmin(actor) {
		userID = &actor.AccountID
	}

	taken, err := s.db.Therapists.EmailTaken(ctx, req.Email, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}
	if userID != nil {
		linked, err := s.db.Therapists.UserIDTaken(ctx, *userID, nil)
		if err != nil {
			return nil, err
		}
		if linked {
			return nil, ErrUserAlreadyLinked
		}
	}

	t := &repo.Therapist{
		UserID:            userID,
		Name:              req.Name,
		Email:             req.Email,
		Bio:               req.Bio,
		Education:         req.Education,
		Languages:         req.Languages,
		AreasCovered:      req.AreasCovered,
		AvailabilityHours: req.AvailabilityHours,
	}
	if req.Image != "" {
		img, err := DecodeImage(req.Image)
		if err != nil {
			return nil, err
		}
		t.ImageData, t.ImageMime = img.Data, img.Mime
	}

	if err := s.db.Therapists.Create(ctx, t); err != nil {
		return nil, mapUnique(err)
	}

	if userID != nil {
		if _, err := s.authz.AddRole(ctx, authorize.GroupSubject(userID.String()), authorize.RoleTherapist); err != nil {
			return nil, fmt.Errorf("grant therapist role: %w", err)
		}
	}
	return t, nil
}

func (s *therapistService) authorizeOwner(ctx context.Context, tid uuid.UUID) (*repo.Therapist, error) {
	t, err := s.Get(ctx, tid)
	if err != nil {
		return nil, err
	}
	actor := reqctx.ActorFromContext(ctx)
	if authorize.IsAdmin(actor) {
		return t, nil
	}
	if t.UserID == nil || *t.UserID != actor.AccountID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *therapistService) Update(ctx context.Context, tid uuid.UUID, req UpdateRequest) (*repo.Therapist, error) {
	if _, err := s.authorizeOwner(ctx, tid); err != nil {
		return nil, err
	}
	// relinking an account is an admin operation
	if req.UserID != nil && !authorize.IsAdmin(reqctx.ActorFromContext(ctx)) {
		return nil, ErrForbidden
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrNameRequired
	}

	patch := repo.TherapistPatch{
		Name:              req.Name,
		Bio:               req.Bio,
		Education:         req.Education,
		Languages:         req.Languages,
		AreasCovered:      req.AreasCovered,
		AvailabilityHours: req.AvailabilityHours,
		UserID:            req.UserID,
	}
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		taken, err := s.db.Therapists.EmailTaken(ctx, e, &tid)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
		patch.Email = &e
	}
	if req.Image != nil {
		img, err := DecodeImage(*req.Image)
		if err != nil {
			return nil, err
		}
		patch.Image = img
	}

	t, err := s.db.Therapists.Update(ctx, tid, patch)
	if repo.IsNotFound(err) {
		return nil, ErrTherapistNotFound
	}
	if err != nil {
		return nil, mapUnique(err)
	}

	if req.UserID != nil {
		if _, err := s.authz.AddRole(ctx, authorize.GroupSubject(req.UserID.String()), authorize.RoleTherapist); err != nil {
			return nil, fmt.Errorf("grant therapist role: %w", err)
		}
	}
	return t, nil
}

func (s *therapistService) Delete(ctx context.Context, tid uuid.UUID) error {
	if _, err := s.authorizeOwner(ctx, tid); err != nil {
		return err
	}
	if err := s.db.Therapists.Delete(ctx, tid); err != nil {
		switch {
		case repo.IsNotFound(err):
			return ErrTherapistNotFound
		case repo.IsForeignKeyViolation(err):
			return ErrTherapistInUse
		}
		return err
	}
	return nil
}

// mapUnique turns a lost race on a unique column into the domain error.
func mapUnique(err error) error {
	switch {
	case repo.IsUniqueViolation(err, repo.ConstraintTherapistEmail):
		return ErrEmailExists
	case repo.IsUniqueViolation(err, repo.ConstraintTherapistUserID):
		return ErrUserAlreadyLinked
	}
	return err
}
