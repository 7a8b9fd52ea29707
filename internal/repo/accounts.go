package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type AccountRepo struct{ base }

func (r *AccountRepo) Create(ctx context.Context, a *Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	q := psql.Insert("accounts").
		Columns("id", "email", "password_hash", "is_active").
		Values(a.ID, a.Email, a.PasswordHash, a.IsActive).
		Suffix("RETURNING created_at")
	if err := r.get(ctx, &a.CreatedAt, q); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	var a Account
	if err := r.get(ctx, &a, psql.Select("*").From("accounts").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	q := psql.Select("*").From("accounts").Where(sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
	if err := r.get(ctx, &a, q); err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := r.exec(ctx, psql.Update("accounts").Set("last_login_at", at).Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	return nil
}

func (r *AccountRepo) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	if err := r.exec(ctx, psql.Update("accounts").Set("password_hash", hash).Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

func (r *AccountRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := r.exec(ctx, psql.Update("accounts").Set("is_active", active).Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("set account active: %w", err)
	}
	return nil
}
