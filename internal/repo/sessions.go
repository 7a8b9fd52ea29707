package repo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

type SessionRepo struct{ base }

type SessionFilter struct {
	TID    *uuid.UUID
	UID    *uuid.UUID
	Date   *slot.Date
	Status string
}

type SessionPatch struct {
	TID           *uuid.UUID
	ScheduledDate *slot.Date
	StartTime     *slot.Clock
	EndTime       *slot.Clock
	PackagePID    *uuid.UUID
}

// MovesSlot reports whether the patch touches the therapist, date or time.
func (p SessionPatch) MovesSlot() bool {
	return p.TID != nil || p.ScheduledDate != nil || p.StartTime != nil || p.EndTime != nil
}

func (r *SessionRepo) Create(ctx context.Context, s *Session) error {
	if s.SID == uuid.Nil {
		s.SID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SessionPending
	}
	q := psql.Insert("sessions").
		Columns("sid", "uid", "tid", "package_pid", "scheduled_date", "start_time", "end_time", "status").
		Values(s.SID, s.UID, s.TID, s.PackagePID, s.ScheduledDate, s.StartTime, s.EndTime, s.Status).
		Suffix("RETURNING *")
	if err := r.get(ctx, s, q); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, sid uuid.UUID) (*Session, error) {
	var s Session
	if err := r.get(ctx, &s, psql.Select("*").From("sessions").Where(sq.Eq{"sid": sid})); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepo) List(ctx context.Context, f SessionFilter) ([]*Session, error) {
	q := psql.Select("*").From("sessions").OrderBy("scheduled_date DESC", "start_time")
	if f.TID != nil {
		q = q.Where(sq.Eq{"tid": *f.TID})
	}
	if f.UID != nil {
		q = q.Where(sq.Eq{"uid": *f.UID})
	}
	if f.Date != nil {
		q = q.Where(sq.Eq{"scheduled_date": *f.Date})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}

	out := []*Session{}
	if err := r.list(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// ListLive returns sessions of tid on date that still hold their slot.
// exclude skips one session, used when re-checking a moved booking.
func (r *SessionRepo) ListLive(ctx context.Context, tid uuid.UUID, date slot.Date, exclude *uuid.UUID) ([]*Session, error) {
	q := psql.Select("*").From("sessions").
		Where(sq.Eq{"tid": tid, "scheduled_date": date}).
		Where(sq.NotEq{"status": deadSessionStatuses}).
		OrderBy("start_time")
	if exclude != nil {
		q = q.Where(sq.NotEq{"sid": *exclude})
	}

	out := []*Session{}
	if err := r.list(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list live sessions: %w", err)
	}
	return out, nil
}

func (r *SessionRepo) Update(ctx context.Context, sid uuid.UUID, p SessionPatch) (*Session, error) {
	q := psql.Update("sessions").Set("updated_at", time.Now().UTC())
	q = set(q, "tid", p.TID)
	q = set(q, "scheduled_date", p.ScheduledDate)
	q = set(q, "start_time", p.StartTime)
	q = set(q, "end_time", p.EndTime)
	q = set(q, "package_pid", p.PackagePID)

	var s Session
	if err := r.get(ctx, &s, q.Where(sq.Eq{"sid": sid}).Suffix("RETURNING *")); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return &s, nil
}

// SetStatus moves the session from one status to another. The write only
// lands while the row still holds from; otherwise ErrNotFound. verified is
// only ever raised, never lowered.
func (r *SessionRepo) SetStatus(ctx context.Context, sid uuid.UUID, from, to string, verified bool) (*Session, error) {
	q := psql.Update("sessions").
		Set("status", to).
		Set("updated_at", time.Now().UTC())
	if verified {
		q = q.Set("verified", true)
	}

	var s Session
	if err := r.get(ctx, &s, q.Where(sq.Eq{"sid": sid, "status": from}).Suffix("RETURNING *")); err != nil {
		return nil, fmt.Errorf("set session status: %w", err)
	}
	return &s, nil
}

func (r *SessionRepo) MarkReportSubmitted(ctx context.Context, sid uuid.UUID, at time.Time) error {
	q := psql.Update("sessions").
		Set("report_submitted_at", at).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"sid": sid})
	if err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("mark report submitted: %w", err)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, sid uuid.UUID) error {
	if err := r.exec(ctx, psql.Delete("sessions").Where(sq.Eq{"sid": sid})); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
