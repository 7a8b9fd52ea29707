package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

var scheduleColumns = []string{"schedule_id", "tid", "day_of_week", "start_time", "end_time", "created_at"}

func newService(t *testing.T, policy slot.Policy) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := New(repo.NewClient(sqlx.NewDb(db, "sqlmock")), Config{Policy: policy}, nil)
	return svc, mock
}

func therapistCtx(tid uuid.UUID) context.Context {
	return reqctx.WithActor(context.Background(), reqctx.Actor{
		AccountID:   uuid.New(),
		Roles:       []string{"role:therapist"},
		TherapistID: &tid,
	})
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	tid := uuid.New()
	svc, _ := newService(t, slot.DefaultPolicy)
	ctx := therapistCtx(tid)

	_, err := svc.Create(ctx, CreateRequest{DayOfWeek: 7, StartTime: slot.MustClock("09:00"), EndTime: slot.MustClock("10:00")})
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = svc.Create(ctx, CreateRequest{DayOfWeek: 1, StartTime: slot.MustClock("10:00"), EndTime: slot.MustClock("10:00")})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	other := uuid.New()
	_, err = svc.Create(ctx, CreateRequest{TID: &other, DayOfWeek: 1, StartTime: slot.MustClock("09:00"), EndTime: slot.MustClock("10:00")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(context.Background(), CreateRequest{DayOfWeek: 1, StartTime: slot.MustClock("09:00"), EndTime: slot.MustClock("10:00")})
	assert.ErrorIs(t, err, ErrTherapistNotFound)
}

func TestCreateOverlap(t *testing.T) {
	tests := []struct {
		name    string
		policy  slot.Policy
		start   string
		end     string
		wantErr error
	}{
		{"touching conflicts by default", slot.DefaultPolicy, "10:00", "11:00", ErrOverlappingSlot},
		{"touching allowed when strict", slot.Policy{}, "10:00", "11:00", nil},
		{"inside conflicts", slot.Policy{}, "09:30", "09:45", ErrOverlappingSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tid := uuid.New()
			svc, mock := newService(t, tt.policy)

			mock.ExpectBegin()
			mock.ExpectExec(`pg_advisory_xact_lock`).WithArgs(tid.String()).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(`SELECT \* FROM therapist_schedules WHERE`).
				WillReturnRows(sqlmock.NewRows(scheduleColumns).
					AddRow(uuid.NewString(), tid.String(), 2, "09:00:00", "10:00:00", time.Now()))
			if tt.wantErr == nil {
				mock.ExpectQuery(`INSERT INTO therapist_schedules`).
					WillReturnRows(sqlmock.NewRows(scheduleColumns).
						AddRow(uuid.NewString(), tid.String(), 2, tt.start+":00", tt.end+":00", time.Now()))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			got, err := svc.Create(therapistCtx(tid), CreateRequest{
				DayOfWeek: 2,
				StartTime: slot.MustClock(tt.start),
				EndTime:   slot.MustClock(tt.end),
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, slot.MustClock(tt.start), got.StartTime)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateSkipsItself(t *testing.T) {
	tid, id := uuid.New(), uuid.New()
	svc, mock := newService(t, slot.DefaultPolicy)
	row := func(start, end string) *sqlmock.Rows {
		return sqlmock.NewRows(scheduleColumns).AddRow(id.String(), tid.String(), 3, start, end, time.Now())
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM therapist_schedules WHERE schedule_id = \$1`).WithArgs(id).
		WillReturnRows(row("09:00:00", "10:00:00"))
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM therapist_schedules WHERE`).
		WillReturnRows(row("09:00:00", "10:00:00"))
	mock.ExpectQuery(`UPDATE therapist_schedules SET end_time = \$1 WHERE schedule_id = \$2 RETURNING \*`).
		WillReturnRows(row("09:00:00", "10:30:00"))
	mock.ExpectCommit()

	end := slot.MustClock("10:30")
	got, err := svc.Update(therapistCtx(tid), id, UpdateRequest{EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, end, got.EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilitySubtractsLiveSessions(t *testing.T) {
	tid := uuid.New()
	svc, mock := newService(t, slot.DefaultPolicy)
	date := slot.MustDate("2026-10-20") // Tuesday
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT \* FROM therapists WHERE tid = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"tid", "name", "email"}).AddRow(tid.String(), "Dr. Reza", "reza@example.com"))
	mock.ExpectQuery(`SELECT \* FROM therapist_schedules WHERE`).
		WillReturnRows(sqlmock.NewRows(scheduleColumns).
			AddRow(uuid.NewString(), tid.String(), 2, "09:00:00", "12:00:00", time.Now()))
	mock.ExpectQuery(`SELECT \* FROM sessions WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"sid", "tid", "scheduled_date", "start_time", "end_time", "status"}).
			AddRow(uuid.NewString(), tid.String(), date.Time(), "10:00:00", "11:00:00", repo.SessionApproved))

	got, err := svc.Availability(context.Background(), tid, date)
	require.NoError(t, err)
	assert.Equal(t, 2, got.DayOfWeek)
	assert.Equal(t, []slot.Range{
		{Start: slot.MustClock("09:00"), End: slot.MustClock("10:00")},
		{Start: slot.MustClock("11:00"), End: slot.MustClock("12:00")},
	}, got.Free)
	assert.NoError(t, mock.ExpectationsWereMet())
}
