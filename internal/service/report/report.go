package report

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/observability"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

var (
	Moods       = []string{"not in good mood", "neutral", "in a good mood"}
	Engagements = []string{"low", "medium", "high"}
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	SessionID                uuid.UUID
	Activities               []string
	MoodStart                string
	MoodEnd                  string
	Engagement               string
	KeyObservations          string
	OverallComments          string
	ImprovementsOrChallenges string
}

type UpdateRequest struct {
	Activities               *[]string
	MoodStart                *string
	MoodEnd                  *string
	Engagement               *string
	KeyObservations          *string
	OverallComments          *string
	ImprovementsOrChallenges *string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context) ([]*repo.Report, error)
	// Get and Update address a report by its session id.
	Get(ctx context.Context, sid uuid.UUID) (*repo.Report, error)
	Create(ctx context.Context, req CreateRequest) (*repo.Report, error)
	Update(ctx context.Context, sid uuid.UUID, req UpdateRequest) (*repo.Report, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type reportService struct {
	db      *repo.Client
	metrics *observability.BookingMetrics
}

func New(db *repo.Client, m *observability.BookingMetrics) Service {
	return &reportService{db: db, metrics: m}
}

func (s *reportService) List(ctx context.Context) ([]*repo.Report, error) {
	a := reqctx.ActorFromContext(ctx)
	var f repo.ReportFilter
	switch {
	case authorize.IsAdmin(a):
	case a.TherapistID != nil:
		f.TherapistTID = a.TherapistID
	default:
		return nil, ErrForbidden
	}
	return s.db.Reports.List(ctx, f)
}

// session loads sid and checks the caller may write its report.
func (s *reportService) session(ctx context.Context, sid uuid.UUID) (*repo.Session, error) {
	sess, err := s.db.Sessions.Get(ctx, sid)
	if repo.IsNotFound(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	a := reqctx.ActorFromContext(ctx)
	if !authorize.IsAdmin(a) && !a.IsTherapist(sess.TID) {
		return nil, ErrForbidden
	}
	return sess, nil
}

func (s *reportService) Get(ctx context.Context, sid uuid.UUID) (*repo.Report, error) {
	if _, err := s.session(ctx, sid); err != nil {
		return nil, err
	}
	r, err := s.db.Reports.GetBySession(ctx, sid)
	if repo.IsNotFound(err) {
		return nil, ErrReportNotFound
	}
	return r, err
}

func validate(moodStart, moodEnd, engagement *string) error {
	for _, m := range []*string{moodStart, moodEnd} {
		if m != nil && !slices.Contains(Moods, *m) {
			return ErrInvalidMood
		}
	}
	if engagement != nil && !slices.Contains(Engagements, *engagement) {
		return ErrInvalidEngage
	}
	return nil
}

func (s *reportService) Create(ctx context.Context, req CreateRequest) (*repo.Report, error) {
	if err := validate(&req.MoodStart, &req.MoodEnd, &req.Engagement); err != nil {
		return nil, err
	}
	if _, err := s.session(ctx, req.SessionID); err != nil {
		return nil, err
	}

	exists, err := s.db.Reports.ExistsForSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReportExists
	}

	rep := &repo.Report{
		SessionID:                req.SessionID,
		Activities:               pq.StringArray(req.Activities),
		MoodStart:                req.MoodStart,
		MoodEnd:                  req.MoodEnd,
		Engagement:               req.Engagement,
		KeyObservations:          req.KeyObservations,
		OverallComments:          req.OverallComments,
		ImprovementsOrChallenges: req.ImprovementsOrChallenges,
	}
	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Reports.Create(ctx, rep); err != nil {
			return err
		}
		return tx.Sessions.MarkReportSubmitted(ctx, req.SessionID, time.Now().UTC())
	})
	// the UNIQUE constraint catches a concurrent submission the pre-check missed
	if repo.IsUniqueViolation(err, repo.ConstraintReportSession) {
		return nil, ErrReportExists
	}
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.metrics.ReportSubmitted(ctx)
	return rep, nil
}

func (s *reportService) Update(ctx context.Context, sid uuid.UUID, req UpdateRequest) (*repo.Report, error) {
	if err := validate(req.MoodStart, req.MoodEnd, req.Engagement); err != nil {
		return nil, err
	}
	if _, err := s.session(ctx, sid); err != nil {
		return nil, err
	}

	patch := repo.ReportPatch{
		MoodStart:                req.MoodStart,
		MoodEnd:                  req.MoodEnd,
		Engagement:               req.Engagement,
		KeyObservations:          req.KeyObservations,
		OverallComments:          req.OverallComments,
		ImprovementsOrChallenges: req.ImprovementsOrChallenges,
	}
	if req.Activities != nil {
		a := pq.StringArray(*req.Activities)
		patch.Activities = &a
	}

	r, err := s.db.Reports.Update(ctx, sid, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	return r, err
}
