package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/internal/service/notification"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	ClientUID       uuid.UUID
	TherapistTID    uuid.UUID
	StartDate       *slot.Date
	SessionsCount   int
	NextSessionDate slot.NullDate
	Notes           string
}

type UpdateRequest struct {
	TherapistTID    *uuid.UUID
	Status          *string
	StartDate       *slot.Date
	EndDate         *slot.NullDate
	SessionsCount   *int
	NextSessionDate *slot.NullDate
	Notes           *string
}

type ListFilter struct {
	Status       string
	ClientUID    *uuid.UUID
	TherapistTID *uuid.UUID
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, f ListFilter) ([]*repo.Assignment, error)
	Get(ctx context.Context, id uuid.UUID) (*repo.Assignment, error)
	Create(ctx context.Context, req CreateRequest) (*repo.Assignment, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Assignment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type assignmentService struct {
	db     *repo.Client
	notify notification.Publisher
	now    func() time.Time
}

func New(db *repo.Client, notify notification.Publisher) Service {
	return &assignmentService{db: db, notify: notify, now: time.Now}
}

func (s *assignmentService) List(ctx context.Context, f ListFilter) ([]*repo.Assignment, error) {
	a := reqctx.ActorFromContext(ctx)
	rf := repo.AssignmentFilter{Status: f.Status, ClientUID: f.ClientUID, TherapistTID: f.TherapistTID}
	switch {
	case authorize.IsAdmin(a):
	case a.TherapistID != nil:
		rf.TherapistTID = a.TherapistID
	default:
		return nil, ErrForbidden
	}
	return s.db.Assignments.List(ctx, rf)
}

func (s *assignmentService) Get(ctx context.Context, id uuid.UUID) (*repo.Assignment, error) {
	as, err := s.db.Assignments.Get(ctx, id)
	if repo.IsNotFound(err) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	a := reqctx.ActorFromContext(ctx)
	if !authorize.IsAdmin(a) && !a.IsTherapist(as.TherapistTID) {
		return nil, ErrForbidden
	}
	return as, nil
}

// Create ends the client's previous active assignments and points
// users.assigned_tid at the new therapist, all in one transaction.
func (s *assignmentService) Create(ctx context.Context, req CreateRequest) (*repo.Assignment, error) {
	if !authorize.IsAdmin(reqctx.ActorFromContext(ctx)) {
		return nil, ErrForbidden
	}
	if err := s.checkParties(ctx, req.ClientUID, req.TherapistTID); err != nil {
		return nil, err
	}

	today := slot.DateOf(s.now())
	start := today
	if req.StartDate != nil {
		start = *req.StartDate
	}

	as := &repo.Assignment{
		ClientUID:       req.ClientUID,
		TherapistTID:    req.TherapistTID,
		Status:          repo.AssignmentActive,
		StartDate:       start,
		SessionsCount:   req.SessionsCount,
		NextSessionDate: req.NextSessionDate,
		Notes:           req.Notes,
	}
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if _, err := tx.Assignments.EndActiveForClient(ctx, req.ClientUID, today); err != nil {
			return err
		}
		if err := tx.Assignments.Create(ctx, as); err != nil {
			return err
		}
		if err := tx.Users.SetAssignedTherapist(ctx, req.ClientUID, &req.TherapistTID); err != nil {
			return err
		}
		return tx.Users.CompletePendingCallback(ctx, req.ClientUID)
	})
	if err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.notify.Publish(ctx, notification.AssignmentCreated(as.ID))
	return as, nil
}

// Update keeps users.assigned_tid in step with the assignment inside the same
// transaction. An active assignment owns it. Closing one hands it back to the
// client's remaining active assignment, or clears it.
func (s *assignmentService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Assignment, error) {
	if !authorize.IsAdmin(reqctx.ActorFromContext(ctx)) {
		return nil, ErrForbidden
	}
	if req.Status != nil && !repo.ValidAssignmentStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}
	if req.TherapistTID != nil {
		if _, err := s.db.Therapists.Get(ctx, *req.TherapistTID); err != nil {
			if repo.IsNotFound(err) {
				return nil, ErrTherapistNotFound
			}
			return nil, err
		}
	}

	var out *repo.Assignment
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		cur, err := tx.Assignments.Get(ctx, id)
		if repo.IsNotFound(err) {
			return ErrAssignmentNotFound
		}
		if err != nil {
			return err
		}

		out, err = tx.Assignments.Update(ctx, id, repo.AssignmentPatch{
			TherapistTID:    req.TherapistTID,
			Status:          req.Status,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			SessionsCount:   req.SessionsCount,
			NextSessionDate: req.NextSessionDate,
			Notes:           req.Notes,
		})
		if err != nil {
			return err
		}
		if out.EndDate.Valid && out.EndDate.Date.Before(out.StartDate) {
			return ErrInvalidDates
		}

		switch {
		case out.Status == repo.AssignmentActive:
			return tx.Users.SetAssignedTherapist(ctx, out.ClientUID, &out.TherapistTID)
		case cur.Status == repo.AssignmentActive:
			return releaseAssigned(ctx, tx, out.ClientUID, cur.TherapistTID)
		}
		// historical rows never own assigned_tid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// releaseAssigned runs after the client's active row for tid was closed.
func releaseAssigned(ctx context.Context, tx *repo.Tx, uid, tid uuid.UUID) error {
	next, err := tx.Assignments.ActiveForClient(ctx, uid)
	if repo.IsNotFound(err) {
		return tx.Users.ClearAssignedTherapistIf(ctx, uid, tid)
	}
	if err != nil {
		return err
	}
	return tx.Users.SetAssignedTherapist(ctx, uid, &next.TherapistTID)
}

func (s *assignmentService) checkParties(ctx context.Context, uid, tid uuid.UUID) error {
	if _, err := s.db.Users.Get(ctx, uid); err != nil {
		if repo.IsNotFound(err) {
			return ErrClientNotFound
		}
		return err
	}
	if _, err := s.db.Therapists.Get(ctx, tid); err != nil {
		if repo.IsNotFound(err) {
			return ErrTherapistNotFound
		}
		return err
	}
	return nil
}
