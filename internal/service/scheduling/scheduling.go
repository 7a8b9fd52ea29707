package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/observability"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	// TID defaults to the calling therapist.
	TID       *uuid.UUID
	DayOfWeek int
	StartTime slot.Clock
	EndTime   slot.Clock
}

type UpdateRequest struct {
	DayOfWeek *int
	StartTime *slot.Clock
	EndTime   *slot.Clock
}

// Availability is the free time of one therapist on one date.
type Availability struct {
	TID       uuid.UUID    `json:"tid"`
	Date      slot.Date    `json:"date"`
	DayOfWeek int          `json:"day_of_week"`
	Windows   []slot.Range `json:"windows"`
	Free      []slot.Range `json:"free"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, tid *uuid.UUID) ([]*repo.Schedule, error)
	Create(ctx context.Context, req CreateRequest) (*repo.Schedule, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Schedule, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Public
	Availability(ctx context.Context, tid uuid.UUID, date slot.Date) (*Availability, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type schedulingService struct {
	db      *repo.Client
	cfg     Config
	metrics *observability.BookingMetrics
}

func New(db *repo.Client, cfg Config, m *observability.BookingMetrics) Service {
	return &schedulingService{db: db, cfg: cfg, metrics: m}
}

func (s *schedulingService) List(ctx context.Context, tid *uuid.UUID) ([]*repo.Schedule, error) {
	return s.db.Schedules.List(ctx, tid)
}

// owns reports whether the caller may manage tid's schedule.
func owns(ctx context.Context, tid uuid.UUID) bool {
	a := reqctx.ActorFromContext(ctx)
	return authorize.IsAdmin(a) || a.IsTherapist(tid)
}

func validate(day int, r slot.Range) error {
	if slot.ValidDay(day) != nil {
		return ErrInvalidDay
	}
	if r.Validate() != nil {
		return ErrInvalidTimeRange
	}
	return nil
}

func (s *schedulingService) Create(ctx context.Context, req CreateRequest) (*repo.Schedule, error) {
	tid := req.TID
	if tid == nil {
		tid = reqctx.ActorFromContext(ctx).TherapistID
	}
	if tid == nil {
		return nil, ErrTherapistNotFound
	}
	if !owns(ctx, *tid) {
		return nil, ErrForbidden
	}

	candidate := slot.Range{Start: req.StartTime, End: req.EndTime}
	if err := validate(req.DayOfWeek, candidate); err != nil {
		return nil, err
	}

	sched := &repo.Schedule{TID: *tid, DayOfWeek: req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime}
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := s.checkFree(ctx, tx, *tid, req.DayOfWeek, candidate, nil); err != nil {
			return err
		}
		return tx.Schedules.Create(ctx, sched)
	})
	if repo.IsForeignKeyViolation(err) {
		return nil, ErrTherapistNotFound
	}
	if err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *schedulingService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Schedule, error) {
	var out *repo.Schedule
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		cur, err := tx.Schedules.Get(ctx, id)
		if repo.IsNotFound(err) {
			return ErrScheduleNotFound
		}
		if err != nil {
			return err
		}
		if !owns(ctx, cur.TID) {
			return ErrForbidden
		}

		day, r := cur.DayOfWeek, cur.Range()
		if req.DayOfWeek != nil {
			day = *req.DayOfWeek
		}
		if req.StartTime != nil {
			r.Start = *req.StartTime
		}
		if req.EndTime != nil {
			r.End = *req.EndTime
		}
		if err := validate(day, r); err != nil {
			return err
		}
		if err := s.checkFree(ctx, tx, cur.TID, day, r, &id); err != nil {
			return err
		}

		out, err = tx.Schedules.Update(ctx, id, repo.SchedulePatch{
			DayOfWeek: req.DayOfWeek,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *schedulingService) Delete(ctx context.Context, id uuid.UUID) error {
	cur, err := s.db.Schedules.Get(ctx, id)
	if repo.IsNotFound(err) {
		return ErrScheduleNotFound
	}
	if err != nil {
		return err
	}
	if !owns(ctx, cur.TID) {
		return ErrForbidden
	}
	if err := s.db.Schedules.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrScheduleNotFound
		}
		return err
	}
	return nil
}

// checkFree locks the therapist and rejects a range that overlaps another
// slot on the same day. self is skipped on update.
func (s *schedulingService) checkFree(ctx context.Context, tx *repo.Tx, tid uuid.UUID, day int, r slot.Range, self *uuid.UUID) error {
	if err := tx.SetLockTimeout(ctx, s.cfg.LockTimeout); err != nil {
		return err
	}
	if err := tx.LockTherapist(ctx, tid); err != nil {
		return err
	}

	existing, err := tx.Schedules.ListForDay(ctx, tid, day)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if self != nil && e.ScheduleID == *self {
			continue
		}
		if slot.Overlaps(e.Range(), r, s.cfg.Policy) {
			s.metrics.Conflict(ctx, "schedule")
			return fmt.Errorf("%w: %s on day %d", ErrOverlappingSlot, e.Range(), day)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

func (s *schedulingService) Availability(ctx context.Context, tid uuid.UUID, date slot.Date) (*Availability, error) {
	if _, err := s.db.Therapists.Get(ctx, tid); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrTherapistNotFound
		}
		return nil, err
	}

	day := date.Weekday()
	var (
		windows []slot.Range
		booked  []slot.Range
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.db.Schedules.ListForDay(gctx, tid, day)
		for _, r := range rows {
			windows = append(windows, r.Range())
		}
		return err
	})
	g.Go(func() error {
		rows, err := s.db.Sessions.ListLive(gctx, tid, date, nil)
		for _, r := range rows {
			booked = append(booked, r.Range())
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}

	if windows == nil {
		windows = []slot.Range{}
	}
	return &Availability{
		TID:       tid,
		Date:      date,
		DayOfWeek: day,
		Windows:   windows,
		Free:      slot.Subtract(windows, booked),
	}, nil
}
