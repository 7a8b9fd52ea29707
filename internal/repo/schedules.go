package repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

type ScheduleRepo struct{ base }

type SchedulePatch struct {
	DayOfWeek *int
	StartTime *slot.Clock
	EndTime   *slot.Clock
}

func (r *ScheduleRepo) Create(ctx context.Context, s *Schedule) error {
	if s.ScheduleID == uuid.Nil {
		s.ScheduleID = uuid.New()
	}
	q := psql.Insert("therapist_schedules").
		Columns("schedule_id", "tid", "day_of_week", "start_time", "end_time").
		Values(s.ScheduleID, s.TID, s.DayOfWeek, s.StartTime, s.EndTime).
		Suffix("RETURNING *")
	if err := r.get(ctx, s, q); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

func (r *ScheduleRepo) Get(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	var s Schedule
	if err := r.get(ctx, &s, psql.Select("*").From("therapist_schedules").Where(sq.Eq{"schedule_id": id})); err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &s, nil
}

// List returns every slot, or the slots of one therapist when tid is set.
func (r *ScheduleRepo) List(ctx context.Context, tid *uuid.UUID) ([]*Schedule, error) {
	q := psql.Select("*").From("therapist_schedules").OrderBy("tid", "day_of_week", "start_time")
	if tid != nil {
		q = q.Where(sq.Eq{"tid": *tid})
	}
	out := []*Schedule{}
	if err := r.list(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

func (r *ScheduleRepo) ListForDay(ctx context.Context, tid uuid.UUID, day int) ([]*Schedule, error) {
	q := psql.Select("*").From("therapist_schedules").
		Where(sq.Eq{"tid": tid, "day_of_week": day}).
		OrderBy("start_time")
	out := []*Schedule{}
	if err := r.list(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list day schedules: %w", err)
	}
	return out, nil
}

func (r *ScheduleRepo) Update(ctx context.Context, id uuid.UUID, p SchedulePatch) (*Schedule, error) {
	q := psql.Update("therapist_schedules").Where(sq.Eq{"schedule_id": id})
	q = set(q, "day_of_week", p.DayOfWeek)
	q = set(q, "start_time", p.StartTime)
	q = set(q, "end_time", p.EndTime)
	if p.DayOfWeek == nil && p.StartTime == nil && p.EndTime == nil {
		return r.Get(ctx, id)
	}

	var s Schedule
	if err := r.get(ctx, &s, q.Suffix("RETURNING *")); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return &s, nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.exec(ctx, psql.Delete("therapist_schedules").Where(sq.Eq{"schedule_id": id})); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
