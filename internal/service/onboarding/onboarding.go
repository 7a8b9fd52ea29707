// Package onboarding stores the intake form a client fills in after signing
// up. The form is opaque JSON; only its top-level shape is checked.
package onboarding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/tidwall/gjson"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

type Service interface {
	Get(ctx context.Context, uid uuid.UUID) (types.JSONText, error)
	Submit(ctx context.Context, uid uuid.UUID, body []byte) (types.JSONText, error)
	// Merge overwrites the top-level keys present in body and keeps the rest.
	Merge(ctx context.Context, uid uuid.UUID, body []byte) (types.JSONText, error)
}

type onboardingService struct {
	db *repo.Client
}

func New(db *repo.Client) Service {
	return &onboardingService{db: db}
}

func (s *onboardingService) load(ctx context.Context, uid uuid.UUID) (*repo.User, error) {
	a := reqctx.ActorFromContext(ctx)
	if !authorize.IsAdmin(a) && !a.IsClient(uid) {
		return nil, ErrForbidden
	}
	u, err := s.db.Users.Get(ctx, uid)
	if repo.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func hasForm(u *repo.User) bool {
	return u.FormResponse != nil && len(*u.FormResponse) > 0 && string(*u.FormResponse) != "null"
}

func object(body []byte) error {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return ErrNotJSONObject
	}
	return nil
}

func (s *onboardingService) Get(ctx context.Context, uid uuid.UUID) (types.JSONText, error) {
	u, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !hasForm(u) {
		return nil, ErrFormNotFound
	}
	return *u.FormResponse, nil
}

func (s *onboardingService) Submit(ctx context.Context, uid uuid.UUID, body []byte) (types.JSONText, error) {
	if err := object(body); err != nil {
		return nil, err
	}
	u, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if hasForm(u) {
		return nil, ErrFormExists
	}
	return s.save(ctx, uid, body)
}

func (s *onboardingService) Merge(ctx context.Context, uid uuid.UUID, body []byte) (types.JSONText, error) {
	if err := object(body); err != nil {
		return nil, err
	}
	u, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}

	merged := map[string]json.RawMessage{}
	if hasForm(u) {
		collect(merged, *u.FormResponse)
	}
	collect(merged, body)

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("merge onboarding: %w", err)
	}
	return s.save(ctx, uid, out)
}

func collect(dst map[string]json.RawMessage, src []byte) {
	gjson.ParseBytes(src).ForEach(func(k, v gjson.Result) bool {
		dst[k.String()] = json.RawMessage(v.Raw)
		return true
	})
}

func (s *onboardingService) save(ctx context.Context, uid uuid.UUID, body []byte) (types.JSONText, error) {
	u, err := s.db.Users.SetFormResponse(ctx, uid, types.JSONText(body))
	if repo.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.FormResponse == nil {
		return types.JSONText(body), nil
	}
	return *u.FormResponse, nil
}
