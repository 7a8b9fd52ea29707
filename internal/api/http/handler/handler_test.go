package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/internal/service/pricing"
	"github.com/Alijeyrad/mindbook_backend/internal/service/session"
	"github.com/Alijeyrad/mindbook_backend/internal/service/therapist"
	"github.com/Alijeyrad/mindbook_backend/internal/service/user"
	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// ---------------------------------------------------------------------------
// Therapists
// ---------------------------------------------------------------------------

type fakeTherapists struct {
	therapist.Service
	err error
}

func (f fakeTherapists) Create(_ context.Context, req therapist.CreateRequest) (*repo.Therapist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &repo.Therapist{TID: uuid.New(), Name: req.Name, Email: req.Email, Bio: req.Bio}, nil
}

func TestCreateTherapist(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "duplicate email",
			err:        therapist.ErrEmailExists,
			body:       `{"name":"Dr. Lee","email":"lee@example.com"}`,
			wantStatus: fiber.StatusConflict,
			wantError:  "Email already exists.",
		},
		{
			name:       "already linked account",
			err:        therapist.ErrUserAlreadyLinked,
			body:       `{"name":"Dr. Lee","email":"lee@example.com"}`,
			wantStatus: fiber.StatusConflict,
			wantError:  therapist.ErrUserAlreadyLinked.Error(),
		},
		{
			name:       "missing email",
			body:       `{"name":"Dr. Lee"}`,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "email is required",
		},
		{
			name:       "backend failure is not echoed",
			err:        assert.AnError,
			body:       `{"name":"Dr. Lee","email":"lee@example.com"}`,
			wantStatus: fiber.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			h := NewTherapistHandler(fakeTherapists{err: tt.err}, nil)
			app.Post("/api/therapists", h.Create)

			status, body := do(t, app, http.MethodPost, "/api/therapists", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestCreateTherapistSanitizesBio(t *testing.T) {
	app := fiber.New()
	h := NewTherapistHandler(fakeTherapists{}, nil)
	app.Post("/api/therapists", h.Create)

	status, body := do(t, app, http.MethodPost, "/api/therapists",
		`{"name":"Dr. Lee","email":"lee@example.com","bio":"<script>alert(1)</script>CBT"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "CBT", body["data"].(map[string]any)["bio"])
}

// ---------------------------------------------------------------------------
// Packages
// ---------------------------------------------------------------------------

func TestCreatePackageMissingFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	app := fiber.New()
	h := NewPackageHandler(pricing.New(repo.NewClient(sqlx.NewDb(db, "sqlmock"))))
	app.Post("/api/packages", h.Create)

	for _, body := range []string{
		`{"cost":"80","duration":50}`,
		`{"name":"Starter","duration":50}`,
		`{"name":"Starter","cost":"80"}`,
	} {
		status, out := do(t, app, http.MethodPost, "/api/packages", body)
		assert.Equal(t, fiber.StatusBadRequest, status, body)
		assert.Contains(t, out["error"], "required", body)
	}
	// nothing reached the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type memUsers struct {
	user.Service
	rows map[uuid.UUID]*repo.User
}

func (m *memUsers) Get(_ context.Context, uid uuid.UUID) (*repo.User, error) {
	u, found := m.rows[uid]
	if !found {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) Deactivate(_ context.Context, uid uuid.UUID) error {
	u, found := m.rows[uid]
	if !found {
		return user.ErrUserNotFound
	}
	u.IsActive = false
	return nil
}

func TestDeleteUserKeepsRow(t *testing.T) {
	uid := uuid.New()
	svc := &memUsers{rows: map[uuid.UUID]*repo.User{uid: {UID: uid, Name: "Sara", IsActive: true}}}

	app := fiber.New()
	h := NewUserHandler(svc)
	app.Get("/api/users/:uid", h.Get)
	app.Delete("/api/users/:uid", h.Delete)

	status, _ := do(t, app, http.MethodDelete, "/api/users/"+uid.String(), "")
	require.Equal(t, fiber.StatusNoContent, status)

	status, body := do(t, app, http.MethodGet, "/api/users/"+uid.String(), "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["data"].(map[string]any)["is_active"])

	status, _ = do(t, app, http.MethodGet, "/api/users/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

type fakeSessions struct {
	session.Service
	err error
}

func (f fakeSessions) Update(_ context.Context, sid uuid.UUID, _ session.UpdateRequest) (*repo.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &repo.Session{SID: sid}, nil
}

func (f fakeSessions) Book(_ context.Context, req session.BookRequest) (*repo.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &repo.Session{SID: uuid.New(), TID: req.TID}, nil
}

func TestSessionErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, fiber.StatusOK},
		{session.ErrOverlappingSession, fiber.StatusConflict},
		{session.ErrInvalidTransition, fiber.StatusConflict},
		{session.ErrOutsideSchedule, fiber.StatusBadRequest},
		{session.ErrSessionNotFound, fiber.StatusNotFound},
		{session.ErrPackageNotFound, fiber.StatusNotFound},
		{session.ErrForbidden, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		app := fiber.New()
		h := NewSessionHandler(fakeSessions{err: tt.err})
		app.Patch("/api/sessions/:sid", h.Update)

		status, _ := do(t, app, http.MethodPatch, "/api/sessions/"+uuid.NewString(), `{"start_time":"10:00"}`)
		assert.Equal(t, tt.want, status, "%v", tt.err)
	}
}

func TestInternalErrorIsLoggedWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.SetContext(reqctx.WithRequestMeta(c.Context(), &reqctx.RequestMeta{RequestID: "req-42"}))
		return c.Next()
	})
	h := NewSessionHandler(fakeSessions{err: errors.New("pq: connection refused")})
	app.Patch("/api/sessions/:sid", h.Update)

	status, body := do(t, app, http.MethodPatch, "/api/sessions/"+uuid.NewString(), `{"start_time":"10:00"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["error"])

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "pq: connection refused", line["error"])
}

func TestBookValidatesBody(t *testing.T) {
	app := fiber.New()
	h := NewSessionHandler(fakeSessions{})
	app.Post("/api/sessions", h.Book)

	status, body := do(t, app, http.MethodPost, "/api/sessions", `{"tid":"`+uuid.NewString()+`","date":"2026-03-02"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "start_time is required")

	status, _ = do(t, app, http.MethodPost, "/api/sessions",
		`{"tid":"`+uuid.NewString()+`","date":"2026-03-02","start_time":"10:00","end_time":"10:50"}`)
	assert.Equal(t, fiber.StatusCreated, status)
}
