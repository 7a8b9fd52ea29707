// Package repo is the PostgreSQL data layer. Every table has a small
// repository bound to a Querier, so the same code runs on the pool or
// inside a transaction.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrNotFound = errors.New("record not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
// constraint narrows the match when non-empty.
func IsUniqueViolation(err error, constraint ...string) bool {
	return isViolation(err, "23505", constraint)
}

// IsForeignKeyViolation reports a write blocked by a reference. constraint
// narrows the match the same way.
func IsForeignKeyViolation(err error, constraint ...string) bool {
	return isViolation(err, "23503", constraint)
}

func isViolation(err error, code pq.ErrorCode, constraints []string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != code {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pqErr.Constraint == c {
			return true
		}
	}
	return false
}

// Querier is satisfied by *sqlx.DB and *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repos groups the per-table repositories.
type Repos struct {
	Accounts    *AccountRepo
	Users       *UserRepo
	Therapists  *TherapistRepo
	Schedules   *ScheduleRepo
	Sessions    *SessionRepo
	Assignments *AssignmentRepo
	Reports     *ReportRepo
	Packages    *PackageRepo
}

func newRepos(q Querier) Repos {
	b := base{q: q}
	return Repos{
		Accounts:    &AccountRepo{b},
		Users:       &UserRepo{b},
		Therapists:  &TherapistRepo{b},
		Schedules:   &ScheduleRepo{b},
		Sessions:    &SessionRepo{b},
		Assignments: &AssignmentRepo{b},
		Reports:     &ReportRepo{b},
		Packages:    &PackageRepo{b},
	}
}

type Client struct {
	Repos
	db *sqlx.DB
}

func NewClient(db *sqlx.DB) *Client {
	return &Client{Repos: newRepos(db), db: db}
}

func (c *Client) DB() *sqlx.DB { return c.db }

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Tx exposes the same repositories bound to a running transaction.
type Tx struct {
	Repos
	tx *sqlx.Tx
}

// WithTx runs fn in a transaction. fn's error rolls back and is returned as is.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&Tx{Repos: newRepos(sqlTx), tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LockTherapist takes a transaction-scoped advisory lock keyed by the
// therapist id. Concurrent writers for the same therapist serialize here.
func (t *Tx) LockTherapist(ctx context.Context, tid uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, tid.String()); err != nil {
		return fmt.Errorf("lock therapist %s: %w", tid, err)
	}
	return nil
}

// SetLockTimeout bounds how long LockTherapist waits.
func (t *Tx) SetLockTimeout(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	_, err := t.tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds()))
	if err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// shared helpers
// ---------------------------------------------------------------------------

type base struct {
	q Querier
}

func (b base) get(ctx context.Context, dest any, qb sq.Sqlizer) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := b.q.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (b base) list(ctx context.Context, dest any, qb sq.Sqlizer) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return b.q.SelectContext(ctx, dest, query, args...)
}

// exec runs qb and returns ErrNotFound when no row was affected.
func (b base) exec(ctx context.Context, qb sq.Sqlizer) error {
	n, err := b.execCount(ctx, qb)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (b base) execCount(ctx context.Context, qb sq.Sqlizer) (int64, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	res, err := b.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// set adds col = *v to the update when v is non-nil.
func set[T any](u sq.UpdateBuilder, col string, v *T) sq.UpdateBuilder {
	if v == nil {
		return u
	}
	return u.Set(col, *v)
}

func (b base) exists(ctx context.Context, qb sq.SelectBuilder) (bool, error) {
	query, args, err := qb.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var ok bool
	if err := b.q.GetContext(ctx, &ok, query, args...); err != nil {
		return false, err
	}
	return ok, nil
}

// SlowQueryLogger wraps a Querier and logs statements slower than threshold.
type SlowQueryLogger struct {
	Querier
	Log       *slog.Logger
	Threshold time.Duration
}

func (s SlowQueryLogger) observe(start time.Time, query string) {
	if d := time.Since(start); d >= s.Threshold {
		s.Log.Warn("slow query", "duration_ms", d.Milliseconds(), "query", query)
	}
}

func (s SlowQueryLogger) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	defer s.observe(time.Now(), query)
	return s.Querier.GetContext(ctx, dest, query, args...)
}

func (s SlowQueryLogger) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	defer s.observe(time.Now(), query)
	return s.Querier.SelectContext(ctx, dest, query, args...)
}

func (s SlowQueryLogger) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer s.observe(time.Now(), query)
	return s.Querier.ExecContext(ctx, query, args...)
}

// NewLoggedClient is NewClient with slow query logging on the pool.
func NewLoggedClient(db *sqlx.DB, log *slog.Logger, threshold time.Duration) *Client {
	if log == nil || threshold <= 0 {
		return NewClient(db)
	}
	return &Client{Repos: newRepos(SlowQueryLogger{Querier: db, Log: log, Threshold: threshold}), db: db}
}
