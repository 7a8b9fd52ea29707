package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

type UserRepo struct{ base }

type UserFilter struct {
	Active            *bool
	CallRequestStatus string
	AssignedTID       *uuid.UUID
}

// UserPatch holds optional column updates. Nil fields are left alone.
type UserPatch struct {
	Name     *string
	Email    *string
	Phone    *string
	IsActive *bool
}

func (r *UserRepo) Create(ctx context.Context, u *User) error {
	if u.UID == uuid.Nil {
		u.UID = uuid.New()
	}
	if u.CallRequestStatus == "" {
		u.CallRequestStatus = CallRequestNone
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	q := psql.Insert("users").
		Columns("uid", "account_id", "name", "email", "phone", "is_active", "assigned_tid", "call_request_status").
		Values(u.UID, u.AccountID, u.Name, u.Email, u.Phone, u.IsActive, u.AssignedTID, u.CallRequestStatus).
		Suffix("RETURNING *")
	if err := r.get(ctx, u, q); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, uid uuid.UUID) (*User, error) {
	return r.one(ctx, sq.Eq{"uid": uid})
}

func (r *UserRepo) GetByAccount(ctx context.Context, accountID uuid.UUID) (*User, error) {
	return r.one(ctx, sq.Eq{"account_id": accountID})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepo) one(ctx context.Context, where sq.Sqlizer) (*User, error) {
	var u User
	if err := r.get(ctx, &u, psql.Select("*").From("users").Where(where)); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]*User, error) {
	q := psql.Select("*").From("users").OrderBy("created_at DESC")
	if f.Active != nil {
		q = q.Where(sq.Eq{"is_active": *f.Active})
	}
	if f.CallRequestStatus != "" {
		q = q.Where(sq.Eq{"call_request_status": f.CallRequestStatus})
	}
	if f.AssignedTID != nil {
		q = q.Where(sq.Eq{"assigned_tid": *f.AssignedTID})
	}

	users := []*User{}
	if err := r.list(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListSeenByTherapist returns distinct clients that have a session or an
// assignment with the therapist.
func (r *UserRepo) ListSeenByTherapist(ctx context.Context, tid uuid.UUID) ([]*User, error) {
	q := psql.Select("*").From("users").
		Where(sq.Expr(
			"uid IN (SELECT uid FROM sessions WHERE tid = ? UNION SELECT client_uid FROM assignments WHERE therapist_tid = ?)",
			tid, tid,
		)).
		OrderBy("name")

	users := []*User{}
	if err := r.list(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("list therapist clients: %w", err)
	}
	return users, nil
}

func (r *UserRepo) Update(ctx context.Context, uid uuid.UUID, p UserPatch) (*User, error) {
	if p.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &e
	}
	q := psql.Update("users").Set("updated_at", time.Now().UTC())
	q = set(q, "name", p.Name)
	q = set(q, "email", p.Email)
	q = set(q, "phone", p.Phone)
	q = set(q, "is_active", p.IsActive)

	var u User
	if err := r.get(ctx, &u, q.Where(sq.Eq{"uid": uid}).Suffix("RETURNING *")); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

// Deactivate is the only way a client is removed.
func (r *UserRepo) Deactivate(ctx context.Context, uid uuid.UUID) error {
	active := false
	_, err := r.Update(ctx, uid, UserPatch{IsActive: &active})
	return err
}

func (r *UserRepo) SetAssignedTherapist(ctx context.Context, uid uuid.UUID, tid *uuid.UUID) error {
	q := psql.Update("users").
		Set("assigned_tid", tid).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"uid": uid})
	if err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("set assigned therapist: %w", err)
	}
	return nil
}

// ClearAssignedTherapistIf unsets assigned_tid only while it still equals tid.
func (r *UserRepo) ClearAssignedTherapistIf(ctx context.Context, uid, tid uuid.UUID) error {
	q := psql.Update("users").
		Set("assigned_tid", nil).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"uid": uid, "assigned_tid": tid})
	if _, err := r.execCount(ctx, q); err != nil {
		return fmt.Errorf("clear assigned therapist: %w", err)
	}
	return nil
}

func (r *UserRepo) SetCallRequestStatus(ctx context.Context, uid uuid.UUID, status string) error {
	q := psql.Update("users").
		Set("call_request_status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"uid": uid})
	if err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("set call request status: %w", err)
	}
	return nil
}

// CompletePendingCallback marks a pending callback as completed. It is a no-op
// when nothing is pending.
func (r *UserRepo) CompletePendingCallback(ctx context.Context, uid uuid.UUID) error {
	q := psql.Update("users").
		Set("call_request_status", CallRequestCompleted).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"uid": uid, "call_request_status": CallRequestPending})
	if _, err := r.execCount(ctx, q); err != nil {
		return fmt.Errorf("complete callback: %w", err)
	}
	return nil
}

func (r *UserRepo) SetFormResponse(ctx context.Context, uid uuid.UUID, form types.JSONText) (*User, error) {
	q := psql.Update("users").
		Set("form_response", form).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"uid": uid}).
		Suffix("RETURNING *")
	var u User
	if err := r.get(ctx, &u, q); err != nil {
		return nil, fmt.Errorf("set form response: %w", err)
	}
	return &u, nil
}
