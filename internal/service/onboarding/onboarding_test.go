package onboarding

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
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

	uid := uuid.New()
	ctx := reqctx.WithActor(context.Background(), reqctx.Actor{
		AccountID: uuid.New(), Roles: []string{"role:client"}, ClientUID: &uid,
	})
	return New(repo.NewClient(sqlx.NewDb(db, "sqlmock"))), mock, uid, ctx
}

func userRows(uid uuid.UUID, form any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"uid", "name", "form_response"}).AddRow(uid.String(), "Sara", form)
}

func TestBodyMustBeObject(t *testing.T) {
	svc, _, uid, ctx := setup(t)
	for _, body := range []string{`[1,2]`, `"text"`, `{broken`, ``} {
		_, err := svc.Submit(ctx, uid, []byte(body))
		assert.ErrorIs(t, err, ErrNotJSONObject, body)
	}
}

func TestSubmitTwiceConflicts(t *testing.T) {
	svc, mock, uid, ctx := setup(t)

	mock.ExpectQuery(`SELECT \* FROM users WHERE uid = \$1`).WillReturnRows(userRows(uid, []byte(`{"goal":"sleep"}`)))

	_, err := svc.Submit(ctx, uid, []byte(`{"goal":"focus"}`))
	assert.ErrorIs(t, err, ErrFormExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeKeepsUntouchedKeys(t *testing.T) {
	svc, mock, uid, ctx := setup(t)

	mock.ExpectQuery(`SELECT \* FROM users WHERE uid = \$1`).
		WillReturnRows(userRows(uid, []byte(`{"goal":"sleep","age":31}`)))
	mock.ExpectQuery(`UPDATE users SET form_response = \$1`).
		WithArgs([]byte(`{"age":31,"goal":"focus","meds":["none"]}`), sqlmock.AnyArg(), uid).
		WillReturnRows(userRows(uid, []byte(`{"age":31,"goal":"focus","meds":["none"]}`)))

	got, err := svc.Merge(ctx, uid, []byte(`{"goal":"focus","meds":["none"]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":31,"goal":"focus","meds":["none"]}`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOtherClientIsForbidden(t *testing.T) {
	svc, _, _, ctx := setup(t)
	_, err := svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)
}
