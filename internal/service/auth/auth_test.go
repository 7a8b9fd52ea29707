package auth

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
	pasetotoken "github.com/Alijeyrad/mindbook_backend/pkg/paseto"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
	"github.com/Alijeyrad/mindbook_backend/pkg/util/password"
)

func hasher() *password.Hasher {
	return password.NewHasher(password.Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, MinLength: 8, GeneratedLength: 12})
}

func setup(t *testing.T) (*authService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	keys := pasetotoken.NewLocalKeys()
	pm, err := pasetotoken.New(pasetotoken.Config{
		Mode: keys.Mode, Issuer: "mindbook", AccessTTL: time.Minute, RefreshTTL: time.Hour,
	}, keys)
	require.NoError(t, err)

	svc := New(repo.NewClient(sqlx.NewDb(db, "sqlmock")), nil, pm, hasher(), nil, "IR").(*authService)
	return svc, mock
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Sara@Mindbook.TEST ")
	require.NoError(t, err)
	assert.Equal(t, "sara@mindbook.test", got)

	for _, bad := range []string{"", "sara", "Sara <sara@mindbook.test>", "a@b@c"} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestLogin(t *testing.T) {
	hash, err := hasher().Hash("correct horse")
	require.NoError(t, err)

	account := func(active bool) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "email", "password_hash", "is_active", "created_at"}).
			AddRow(uuid.NewString(), "sara@mindbook.test", hash, active, time.Now())
	}

	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		password string
		wantErr  error
	}{
		{"unknown email", sqlmock.NewRows([]string{"id"}), "correct horse", ErrInvalidCredentials},
		{"wrong password", account(true), "battery staple", ErrInvalidCredentials},
		{"disabled account", account(false), "correct horse", ErrAccountDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := setup(t)
			mock.ExpectQuery(`SELECT \* FROM accounts WHERE email = \$1`).
				WithArgs("sara@mindbook.test").
				WillReturnRows(tt.rows)

			_, err := svc.Login(context.Background(), LoginRequest{Email: "Sara@mindbook.test", Password: tt.password})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "nope", Password: "long enough"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "sara@mindbook.test", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc, _ := setup(t)

	_, _, err := svc.Authenticate(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := svc.paseto.IssueRefresh(uuid.New(), uuid.New())
	require.NoError(t, err)
	_, _, err = svc.Authenticate(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRoleChangesAreAdminOnly(t *testing.T) {
	svc, _ := setup(t)
	client := reqctx.WithActor(context.Background(), reqctx.Actor{AccountID: uuid.New(), Roles: []string{"role:client"}})
	admin := reqctx.WithActor(context.Background(), reqctx.Actor{AccountID: uuid.New(), Roles: []string{"role:admin"}})

	assert.ErrorIs(t, svc.GrantRole(client, uuid.New(), "therapist"), ErrForbidden)
	assert.ErrorIs(t, svc.RevokeRole(client, uuid.New(), "therapist"), ErrForbidden)
	assert.ErrorIs(t, svc.GrantRole(admin, uuid.New(), "superuser"), ErrUnknownRole)
}
