package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
)

func ptr[T any](v T) *T { return &v }

func newService(t *testing.T) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(repo.NewClient(sqlx.NewDb(db, "sqlmock"))), mock
}

func TestCreateRequiresFields(t *testing.T) {
	svc, _ := newService(t)
	cost := decimal.RequireFromString("120.00")

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"no name", CreateRequest{Cost: &cost, Duration: ptr(50)}},
		{"blank name", CreateRequest{Name: ptr("  "), Cost: &cost, Duration: ptr(50)}},
		{"no cost", CreateRequest{Name: ptr("Starter"), Duration: ptr(50)}},
		{"no duration", CreateRequest{Name: ptr("Starter"), Cost: &cost}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}

	_, err := svc.Create(context.Background(), CreateRequest{Name: ptr("x"), Cost: ptr(decimal.NewFromInt(-1)), Duration: ptr(50)})
	assert.ErrorIs(t, err, ErrInvalidCost)
	_, err = svc.Create(context.Background(), CreateRequest{Name: ptr("x"), Cost: &cost, Duration: ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestCreate(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery(`INSERT INTO packages \(pid,name,description,cost,duration,min_commitment\)`).
		WithArgs(sqlmock.AnyArg(), "Starter", "", decimal.RequireFromString("99.99"), 50, 4).
		WillReturnRows(sqlmock.NewRows([]string{"pid", "name", "cost", "duration", "min_commitment", "created_at"}).
			AddRow(uuid.NewString(), "Starter", "99.99", 50, 4, time.Now()))

	p, err := svc.Create(context.Background(), CreateRequest{
		Name:          ptr(" Starter "),
		Cost:          ptr(decimal.RequireFromString("99.994")),
		Duration:      ptr(50),
		MinCommitment: 4,
	})
	require.NoError(t, err)
	assert.True(t, p.Cost.Equal(decimal.RequireFromString("99.99")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMapsErrors(t *testing.T) {
	svc, mock := newService(t)
	pid := uuid.New()

	mock.ExpectExec(`DELETE FROM packages`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, svc.Delete(context.Background(), pid), ErrPackageNotFound)

	mock.ExpectExec(`DELETE FROM packages`).WillReturnError(&pq.Error{Code: "23503"})
	assert.ErrorIs(t, svc.Delete(context.Background(), pid), ErrPackageInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}
