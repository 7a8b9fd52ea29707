package report

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

func setup(t *testing.T) (Service, sqlmock.Sqlmock, uuid.UUID, context.Context) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tid := uuid.New()
	ctx := reqctx.WithActor(context.Background(), reqctx.Actor{
		AccountID: uuid.New(), Roles: []string{"role:therapist"}, TherapistID: &tid,
	})
	return New(repo.NewClient(sqlx.NewDb(db, "sqlmock")), nil), mock, tid, ctx
}

func expectSession(mock sqlmock.Sqlmock, sid, tid uuid.UUID) {
	mock.ExpectQuery(`SELECT \* FROM sessions WHERE sid = \$1`).WithArgs(sid).
		WillReturnRows(sqlmock.NewRows([]string{"sid", "uid", "tid", "status"}).
			AddRow(sid.String(), uuid.NewString(), tid.String(), repo.SessionCompleted))
}

func validRequest(sid uuid.UUID) CreateRequest {
	return CreateRequest{
		SessionID:  sid,
		Activities: []string{"breathing", "journaling"},
		MoodStart:  "neutral",
		MoodEnd:    "in a good mood",
		Engagement: "high",
	}
}

func TestCreateValidatesEnums(t *testing.T) {
	svc, _, _, ctx := setup(t)

	req := validRequest(uuid.New())
	req.MoodStart = "grumpy"
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidMood)

	req = validRequest(uuid.New())
	req.Engagement = "very high"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidEngage)
}

func TestCreateMarksSessionInOneTransaction(t *testing.T) {
	svc, mock, tid, ctx := setup(t)
	sid := uuid.New()

	expectSession(mock, sid, tid)
	mock.ExpectQuery(`SELECT EXISTS \( SELECT 1 FROM reports WHERE session_id = \$1 \)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reports`).
		WillReturnRows(sqlmock.NewRows([]string{"report_id", "session_id", "activities", "mood_start", "submitted_at"}).
			AddRow(uuid.NewString(), sid.String(), "{breathing,journaling}", "neutral", time.Now()))
	mock.ExpectExec(`UPDATE sessions SET report_submitted_at = \$1, updated_at = \$2 WHERE sid = \$3`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := svc.Create(ctx, validRequest(sid))
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"breathing", "journaling"}, got.Activities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSecondReportConflicts(t *testing.T) {
	t.Run("caught by the pre-check", func(t *testing.T) {
		svc, mock, tid, ctx := setup(t)
		sid := uuid.New()

		expectSession(mock, sid, tid)
		mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := svc.Create(ctx, validRequest(sid))
		assert.ErrorIs(t, err, ErrReportExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("caught by the constraint", func(t *testing.T) {
		svc, mock, tid, ctx := setup(t)
		sid := uuid.New()

		expectSession(mock, sid, tid)
		mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO reports`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: repo.ConstraintReportSession})
		mock.ExpectRollback()

		_, err := svc.Create(ctx, validRequest(sid))
		assert.ErrorIs(t, err, ErrReportExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOnlyTheSessionTherapistWrites(t *testing.T) {
	svc, mock, _, ctx := setup(t)
	sid := uuid.New()

	expectSession(mock, sid, uuid.New())

	_, err := svc.Create(ctx, validRequest(sid))
	assert.ErrorIs(t, err, ErrForbidden)
}
