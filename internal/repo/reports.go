package repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ReportRepo struct{ base }

type ReportFilter struct {
	// TherapistTID limits to reports of that therapist's sessions.
	TherapistTID *uuid.UUID
	ClientUID    *uuid.UUID
}

type ReportPatch struct {
	Activities               *pq.StringArray
	MoodStart                *string
	MoodEnd                  *string
	Engagement               *string
	KeyObservations          *string
	OverallComments          *string
	ImprovementsOrChallenges *string
}

func (r *ReportRepo) Create(ctx context.Context, rep *Report) error {
	if rep.ReportID == uuid.Nil {
		rep.ReportID = uuid.New()
	}
	if rep.Activities == nil {
		rep.Activities = pq.StringArray{}
	}
	q := psql.Insert("reports").
		Columns("report_id", "session_id", "activities", "mood_start", "mood_end", "engagement",
			"key_observations", "overall_comments", "improvements_or_challenges").
		Values(rep.ReportID, rep.SessionID, rep.Activities, rep.MoodStart, rep.MoodEnd, rep.Engagement,
			rep.KeyObservations, rep.OverallComments, rep.ImprovementsOrChallenges).
		Suffix("RETURNING *")
	if err := r.get(ctx, rep, q); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *ReportRepo) GetBySession(ctx context.Context, sid uuid.UUID) (*Report, error) {
	var rep Report
	if err := r.get(ctx, &rep, psql.Select("*").From("reports").Where(sq.Eq{"session_id": sid})); err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &rep, nil
}

func (r *ReportRepo) ExistsForSession(ctx context.Context, sid uuid.UUID) (bool, error) {
	ok, err := r.exists(ctx, psql.Select("1").From("reports").Where(sq.Eq{"session_id": sid}))
	if err != nil {
		return false, fmt.Errorf("check report: %w", err)
	}
	return ok, nil
}

func (r *ReportRepo) List(ctx context.Context, f ReportFilter) ([]*Report, error) {
	q := psql.Select("r.*").From("reports r").OrderBy("r.submitted_at DESC")
	if f.TherapistTID != nil || f.ClientUID != nil {
		q = q.Join("sessions s ON s.sid = r.session_id")
	}
	if f.TherapistTID != nil {
		q = q.Where(sq.Eq{"s.tid": *f.TherapistTID})
	}
	if f.ClientUID != nil {
		q = q.Where(sq.Eq{"s.uid": *f.ClientUID})
	}

	out := []*Report{}
	if err := r.list(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) Update(ctx context.Context, sid uuid.UUID, p ReportPatch) (*Report, error) {
	if p.Activities == nil && p.MoodStart == nil && p.MoodEnd == nil && p.Engagement == nil &&
		p.KeyObservations == nil && p.OverallComments == nil && p.ImprovementsOrChallenges == nil {
		return r.GetBySession(ctx, sid)
	}

	q := psql.Update("reports").Where(sq.Eq{"session_id": sid})
	q = set(q, "activities", p.Activities)
	q = set(q, "mood_start", p.MoodStart)
	q = set(q, "mood_end", p.MoodEnd)
	q = set(q, "engagement", p.Engagement)
	q = set(q, "key_observations", p.KeyObservations)
	q = set(q, "overall_comments", p.OverallComments)
	q = set(q, "improvements_or_challenges", p.ImprovementsOrChallenges)

	var rep Report
	if err := r.get(ctx, &rep, q.Suffix("RETURNING *")); err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	return &rep, nil
}
