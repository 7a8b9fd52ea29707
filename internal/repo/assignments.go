package repo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

type AssignmentRepo struct{ base }

type AssignmentFilter struct {
	Status       string
	ClientUID    *uuid.UUID
	TherapistTID *uuid.UUID
}

type AssignmentPatch struct {
	TherapistTID    *uuid.UUID
	Status          *string
	StartDate       *slot.Date
	EndDate         *slot.NullDate
	SessionsCount   *int
	NextSessionDate *slot.NullDate
	Notes           *string
}

func (r *AssignmentRepo) Create(ctx context.Context, a *Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AssignmentActive
	}
	q := psql.Insert("assignments").
		Columns("id", "client_uid", "therapist_tid", "status", "start_date", "end_date",
			"sessions_count", "next_session_date", "notes").
		Values(a.ID, a.ClientUID, a.TherapistTID, a.Status, a.StartDate, a.EndDate,
			a.SessionsCount, a.NextSessionDate, a.Notes).
		Suffix("RETURNING *")
	if err := r.get(ctx, a, q); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepo) Get(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	var a Assignment
	if err := r.get(ctx, &a, psql.Select("*").From("assignments").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

func (r *AssignmentRepo) List(ctx context.Context, f AssignmentFilter) ([]*Assignment, error) {
	q := psql.Select("*").From("assignments").OrderBy("created_at DESC")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.ClientUID != nil {
		q = q.Where(sq.Eq{"client_uid": *f.ClientUID})
	}
	if f.TherapistTID != nil {
		q = q.Where(sq.Eq{"therapist_tid": *f.TherapistTID})
	}

	out := []*Assignment{}
	if err := r.list(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

// ActiveForClient returns the client's most recent active assignment.
func (r *AssignmentRepo) ActiveForClient(ctx context.Context, clientUID uuid.UUID) (*Assignment, error) {
	q := psql.Select("*").From("assignments").
		Where(sq.Eq{"client_uid": clientUID, "status": AssignmentActive}).
		OrderBy("start_date DESC").
		Limit(1)
	var a Assignment
	if err := r.get(ctx, &a, q); err != nil {
		return nil, fmt.Errorf("active assignment: %w", err)
	}
	return &a, nil
}

// EndActiveForClient closes every active assignment of the client.
func (r *AssignmentRepo) EndActiveForClient(ctx context.Context, clientUID uuid.UUID, on slot.Date) (int64, error) {
	q := psql.Update("assignments").
		Set("status", AssignmentEnded).
		Set("end_date", on).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"client_uid": clientUID, "status": AssignmentActive})
	n, err := r.execCount(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("end active assignments: %w", err)
	}
	return n, nil
}

func (r *AssignmentRepo) Update(ctx context.Context, id uuid.UUID, p AssignmentPatch) (*Assignment, error) {
	q := psql.Update("assignments").Set("updated_at", time.Now().UTC())
	q = set(q, "therapist_tid", p.TherapistTID)
	q = set(q, "status", p.Status)
	q = set(q, "start_date", p.StartDate)
	q = set(q, "end_date", p.EndDate)
	q = set(q, "sessions_count", p.SessionsCount)
	q = set(q, "next_session_date", p.NextSessionDate)
	q = set(q, "notes", p.Notes)

	var a Assignment
	if err := r.get(ctx, &a, q.Where(sq.Eq{"id": id}).Suffix("RETURNING *")); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	return &a, nil
}
