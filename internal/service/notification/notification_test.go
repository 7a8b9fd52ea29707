package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/email"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Handle(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func TestQueueDrainsOnStop(t *testing.T) {
	rec := &recorder{}
	q := New(16, rec, nil)
	q.Start(3)

	for i := 0; i < 10; i++ {
		q.Publish(context.Background(), BookingCreated(uuid.New()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
	assert.Len(t, rec.events, 10)

	// publishing after stop is dropped, not a panic
	q.Publish(context.Background(), BookingCreated(uuid.New()))
	assert.NoError(t, q.Stop(ctx))
}

func TestQueueDropsWhenFull(t *testing.T) {
	rec := &recorder{}
	q := New(1, rec, nil)

	// no workers yet: the second publish overflows
	q.Publish(context.Background(), BookingCreated(uuid.New()))
	q.Publish(context.Background(), BookingCreated(uuid.New()))

	q.Start(1)
	require.NoError(t, q.Stop(context.Background()))
	assert.Len(t, rec.events, 1)
}

// ---------------------------------------------------------------------------
// dispatcher
// ---------------------------------------------------------------------------

type fakeDir struct {
	session   *repo.Session
	user      *repo.User
	therapist *repo.Therapist
}

func (f fakeDir) Session(context.Context, uuid.UUID) (*repo.Session, error) {
	if f.session == nil {
		return nil, repo.ErrNotFound
	}
	return f.session, nil
}
func (f fakeDir) User(context.Context, uuid.UUID) (*repo.User, error) { return f.user, nil }
func (f fakeDir) Therapist(context.Context, uuid.UUID) (*repo.Therapist, error) {
	return f.therapist, nil
}
func (f fakeDir) Assignment(context.Context, uuid.UUID) (*repo.Assignment, error) {
	return nil, repo.ErrNotFound
}

type fakeMail struct {
	sent []email.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, m email.Message) error {
	f.sent = append(f.sent, m)
	return f.err
}
func (f *fakeMail) Enabled() bool { return true }

type fakeSMS struct {
	phones []string
}

func (f *fakeSMS) SendReminder(_ context.Context, phone string, _ map[string]string) error {
	f.phones = append(f.phones, phone)
	return nil
}
func (f *fakeSMS) Enabled() bool { return true }

func fixtures(status string) fakeDir {
	return fakeDir{
		session: &repo.Session{
			SID: uuid.New(), UID: uuid.New(), TID: uuid.New(),
			ScheduledDate: slot.MustDate("2026-10-20"),
			StartTime:     slot.MustClock("09:00"),
			EndTime:       slot.MustClock("10:00"),
			Status:        status,
		},
		user:      &repo.User{Name: "Sara", Email: "sara@example.com", Phone: "+989121234567"},
		therapist: &repo.Therapist{Name: "Dr. Reza", Email: "reza@example.com"},
	}
}

func TestDispatchBookingCreatedMailsTherapist(t *testing.T) {
	mail, text := &fakeMail{}, &fakeSMS{}
	d := NewDispatcher(fixtures(repo.SessionPending), mail, email.Branding{}, text, DispatcherConfig{}, nil)

	require.NoError(t, d.Handle(context.Background(), BookingCreated(uuid.New())))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"reza@example.com"}, mail.sent[0].To)
	assert.Contains(t, mail.sent[0].TextBody, "Sara")
	assert.Contains(t, mail.sent[0].TextBody, "09:00")
	assert.Empty(t, text.phones)
}

func TestDispatchApprovedSessionAlsoTexts(t *testing.T) {
	mail, text := &fakeMail{}, &fakeSMS{}
	d := NewDispatcher(fixtures(repo.SessionApproved), mail, email.Branding{}, text, DispatcherConfig{}, nil)

	require.NoError(t, d.Handle(context.Background(), SessionStatusChanged(uuid.New())))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"sara@example.com"}, mail.sent[0].To)
	assert.Equal(t, []string{"+989121234567"}, text.phones)
}

func TestDispatchErrors(t *testing.T) {
	mail := &fakeMail{err: errors.New("smtp down")}

	d := NewDispatcher(fixtures(repo.SessionPending), mail, email.Branding{}, &fakeSMS{}, DispatcherConfig{}, nil)
	assert.Error(t, d.Handle(context.Background(), BookingCreated(uuid.New())))

	assert.ErrorIs(t, d.Handle(context.Background(), Event{Kind: "bogus"}), ErrUnknownKind)

	// no admins configured
	assert.ErrorIs(t, d.Handle(context.Background(), CallbackRequested(uuid.New(), "")), ErrNoRecipient)

	missing := NewDispatcher(fakeDir{}, mail, email.Branding{}, &fakeSMS{}, DispatcherConfig{}, nil)
	assert.ErrorIs(t, missing.Handle(context.Background(), BookingCreated(uuid.New())), repo.ErrNotFound)
}

func TestDispatchCallbackGoesToAdmins(t *testing.T) {
	mail := &fakeMail{}
	d := NewDispatcher(fixtures(repo.SessionPending), mail, email.Branding{AppName: "Mindbook"}, &fakeSMS{},
		DispatcherConfig{AdminEmails: []string{"ops@example.com"}}, nil)

	require.NoError(t, d.Handle(context.Background(), CallbackRequested(uuid.New(), "evenings only")))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"ops@example.com"}, mail.sent[0].To)
	assert.Contains(t, mail.sent[0].TextBody, "evenings only")
}
