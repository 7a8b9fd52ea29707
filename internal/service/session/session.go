package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/internal/service/notification"
	"github.com/Alijeyrad/mindbook_backend/internal/service/scheduling"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/observability"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	TID  uuid.UUID
	Date slot.Date
	// UID is only honoured for admins booking on behalf of a client.
	UID        *uuid.UUID
	StartTime  slot.Clock
	EndTime    slot.Clock
	PackagePID *uuid.UUID
}

type UpdateRequest struct {
	TID        *uuid.UUID
	Date       *slot.Date
	StartTime  *slot.Clock
	EndTime    *slot.Clock
	PackagePID *uuid.UUID
}

type ListFilter struct {
	TID    *uuid.UUID
	UID    *uuid.UUID
	Date   *slot.Date
	Status string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, f ListFilter) ([]*repo.Session, error)
	Get(ctx context.Context, sid uuid.UUID) (*repo.Session, error)
	Book(ctx context.Context, req BookRequest) (*repo.Session, error)
	Update(ctx context.Context, sid uuid.UUID, req UpdateRequest) (*repo.Session, error)
	Delete(ctx context.Context, sid uuid.UUID) error
	SetStatus(ctx context.Context, sid uuid.UUID, status string) (*repo.Session, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type sessionService struct {
	db      *repo.Client
	cfg     scheduling.Config
	notify  notification.Publisher
	metrics *observability.BookingMetrics
}

func New(db *repo.Client, cfg scheduling.Config, notify notification.Publisher, m *observability.BookingMetrics) Service {
	return &sessionService{db: db, cfg: cfg, notify: notify, metrics: m}
}

// List scopes non-admins to their own sessions whatever the filter says.
func (s *sessionService) List(ctx context.Context, f ListFilter) ([]*repo.Session, error) {
	actor := reqctx.ActorFromContext(ctx)
	rf := repo.SessionFilter{TID: f.TID, UID: f.UID, Date: f.Date, Status: f.Status}

	switch {
	case authorize.IsAdmin(actor):
	case actor.TherapistID != nil:
		rf.TID = actor.TherapistID
	case actor.ClientUID != nil:
		rf.UID = actor.ClientUID
	default:
		return nil, ErrForbidden
	}
	return s.db.Sessions.List(ctx, rf)
}

func (s *sessionService) load(ctx context.Context, sid uuid.UUID) (*repo.Session, error) {
	sess, err := s.db.Sessions.Get(ctx, sid)
	if repo.IsNotFound(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, sid uuid.UUID) (*repo.Session, error) {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	a := reqctx.ActorFromContext(ctx)
	if !authorize.IsAdmin(a) && !a.IsClient(sess.UID) && !a.IsTherapist(sess.TID) {
		return nil, ErrForbidden
	}
	return sess, nil
}

func (s *sessionService) Book(ctx context.Context, req BookRequest) (*repo.Session, error) {
	actor := reqctx.ActorFromContext(ctx)
	uid := actor.ClientUID
	if authorize.IsAdmin(actor) && req.UID != nil {
		uid = req.UID
	}
	if uid == nil {
		return nil, ErrClientRequired
	}

	r := slot.Range{Start: req.StartTime, End: req.EndTime}
	if r.Validate() != nil {
		return nil, ErrInvalidTimeRange
	}

	sess := &repo.Session{
		UID:           *uid,
		TID:           req.TID,
		PackagePID:    req.PackagePID,
		ScheduledDate: req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        repo.SessionPending,
	}
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := s.lock(ctx, tx, req.TID); err != nil {
			return err
		}
		if err := therapistExists(ctx, tx, req.TID); err != nil {
			return err
		}
		if err := s.fitsSchedule(ctx, tx, req.TID, req.Date, r); err != nil {
			return err
		}
		if err := s.checkFree(ctx, tx, req.TID, req.Date, r, nil); err != nil {
			return err
		}
		return tx.Sessions.Create(ctx, sess)
	})
	if err != nil {
		return nil, referenceError(err)
	}

	s.metrics.Booked(ctx)
	s.notify.Publish(ctx, notification.BookingCreated(sess.SID))
	return sess, nil
}

// Update moves or edits a session. Moving re-runs the overlap check with the
// session itself excluded.
func (s *sessionService) Update(ctx context.Context, sid uuid.UUID, req UpdateRequest) (*repo.Session, error) {
	patch := repo.SessionPatch{
		TID:           req.TID,
		ScheduledDate: req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		PackagePID:    req.PackagePID,
	}

	var out *repo.Session
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		cur, err := tx.Sessions.Get(ctx, sid)
		if repo.IsNotFound(err) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		a := reqctx.ActorFromContext(ctx)
		if !authorize.IsAdmin(a) && !a.IsClient(cur.UID) {
			return ErrForbidden
		}

		if patch.MovesSlot() {
			if terminal(cur.Status) {
				return fmt.Errorf("%w: session is %s", ErrInvalidTransition, cur.Status)
			}
			tid, date, r := cur.TID, cur.ScheduledDate, cur.Range()
			if req.TID != nil {
				tid = *req.TID
			}
			if req.Date != nil {
				date = *req.Date
			}
			if req.StartTime != nil {
				r.Start = *req.StartTime
			}
			if req.EndTime != nil {
				r.End = *req.EndTime
			}
			if r.Validate() != nil {
				return ErrInvalidTimeRange
			}
			if err := s.lock(ctx, tx, tid); err != nil {
				return err
			}
			if req.TID != nil {
				if err := therapistExists(ctx, tx, tid); err != nil {
					return err
				}
			}
			if err := s.checkFree(ctx, tx, tid, date, r, &sid); err != nil {
				return err
			}
		}

		out, err = tx.Sessions.Update(ctx, sid, patch)
		return err
	})
	if err != nil {
		return nil, referenceError(err)
	}
	return out, nil
}

func (s *sessionService) Delete(ctx context.Context, sid uuid.UUID) error {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return err
	}
	a := reqctx.ActorFromContext(ctx)
	if !authorize.IsAdmin(a) && !a.IsClient(sess.UID) {
		return ErrForbidden
	}
	if err := s.db.Sessions.Delete(ctx, sid); err != nil {
		if repo.IsNotFound(err) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// SetStatus applies the transition table. The session's therapist and admins
// may make any allowed move; the client may only cancel. The write is
// conditional on the status that was checked, so of two racing changes from
// the same state only the first lands.
func (s *sessionService) SetStatus(ctx context.Context, sid uuid.UUID, status string) (*repo.Session, error) {
	if !knownStatus(status) {
		return nil, ErrInvalidStatus
	}
	cur, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}

	a := reqctx.ActorFromContext(ctx)
	switch {
	case authorize.IsAdmin(a), a.IsTherapist(cur.TID):
	case a.IsClient(cur.UID) && status == repo.SessionCancelled:
	default:
		return nil, ErrForbidden
	}

	if !CanTransition(cur.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, cur.Status, status)
	}

	out, err := s.db.Sessions.SetStatus(ctx, sid, cur.Status, status, status == repo.SessionCompleted)
	if repo.IsNotFound(err) {
		// the row left cur.Status (or vanished) after it was read
		return nil, fmt.Errorf("%w: session is no longer %s", ErrInvalidTransition, cur.Status)
	}
	if err != nil {
		return nil, err
	}
	s.notify.Publish(ctx, notification.SessionStatusChanged(sid))
	return out, nil
}

// ---------------------------------------------------------------------------
// overlap
// ---------------------------------------------------------------------------

func therapistExists(ctx context.Context, tx *repo.Tx, tid uuid.UUID) error {
	_, err := tx.Therapists.Get(ctx, tid)
	if repo.IsNotFound(err) {
		return ErrTherapistNotFound
	}
	return err
}

// referenceError names the missing row behind a foreign key failure.
func referenceError(err error) error {
	switch {
	case repo.IsForeignKeyViolation(err, repo.ConstraintSessionPackage):
		return ErrPackageNotFound
	case repo.IsForeignKeyViolation(err, repo.ConstraintSessionClient):
		return ErrClientNotFound
	case repo.IsForeignKeyViolation(err):
		return ErrTherapistNotFound
	}
	return err
}

func (s *sessionService) lock(ctx context.Context, tx *repo.Tx, tid uuid.UUID) error {
	if err := tx.SetLockTimeout(ctx, s.cfg.LockTimeout); err != nil {
		return err
	}
	return tx.LockTherapist(ctx, tid)
}

// fitsSchedule requires r to sit inside one weekly window of that weekday.
func (s *sessionService) fitsSchedule(ctx context.Context, tx *repo.Tx, tid uuid.UUID, date slot.Date, r slot.Range) error {
	windows, err := tx.Schedules.ListForDay(ctx, tid, date.Weekday())
	if err != nil {
		return err
	}
	for _, w := range windows {
		if w.Range().Contains(r) {
			return nil
		}
	}
	return ErrOutsideSchedule
}

func (s *sessionService) checkFree(ctx context.Context, tx *repo.Tx, tid uuid.UUID, date slot.Date, r slot.Range, self *uuid.UUID) error {
	live, err := tx.Sessions.ListLive(ctx, tid, date, self)
	if err != nil {
		return err
	}
	ranges := make([]slot.Range, len(live))
	for i, l := range live {
		ranges[i] = l.Range()
	}
	if i := slot.FirstConflict(ranges, r, s.cfg.Policy); i >= 0 {
		s.metrics.Conflict(ctx, "session")
		return fmt.Errorf("%w: %s on %s", ErrOverlappingSession, ranges[i], date)
	}
	return nil
}
