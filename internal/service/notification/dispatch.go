package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/pkg/email"
	"github.com/Alijeyrad/mindbook_backend/pkg/observability"
	"github.com/Alijeyrad/mindbook_backend/pkg/sms"
)

// Directory is the read side the dispatcher needs.
type Directory interface {
	Session(ctx context.Context, sid uuid.UUID) (*repo.Session, error)
	User(ctx context.Context, uid uuid.UUID) (*repo.User, error)
	Therapist(ctx context.Context, tid uuid.UUID) (*repo.Therapist, error)
	Assignment(ctx context.Context, id uuid.UUID) (*repo.Assignment, error)
}

type repoDirectory struct{ db *repo.Client }

// NewDirectory adapts the repository client.
func NewDirectory(db *repo.Client) Directory { return repoDirectory{db: db} }

func (d repoDirectory) Session(ctx context.Context, sid uuid.UUID) (*repo.Session, error) {
	return d.db.Sessions.Get(ctx, sid)
}

func (d repoDirectory) User(ctx context.Context, uid uuid.UUID) (*repo.User, error) {
	return d.db.Users.Get(ctx, uid)
}

func (d repoDirectory) Therapist(ctx context.Context, tid uuid.UUID) (*repo.Therapist, error) {
	return d.db.Therapists.Get(ctx, tid)
}

func (d repoDirectory) Assignment(ctx context.Context, id uuid.UUID) (*repo.Assignment, error) {
	return d.db.Assignments.Get(ctx, id)
}

type DispatcherConfig struct {
	AdminEmails []string
}

// Dispatcher turns events into emails and SMS.
type Dispatcher struct {
	dir     Directory
	mail    email.Sender
	brand   email.Branding
	sms     sms.Sender
	admins  []string
	metrics *observability.BookingMetrics
}

func NewDispatcher(dir Directory, mail email.Sender, brand email.Branding, smsCli sms.Sender, cfg DispatcherConfig, m *observability.BookingMetrics) *Dispatcher {
	return &Dispatcher{dir: dir, mail: mail, brand: brand, sms: smsCli, admins: cfg.AdminEmails, metrics: m}
}

func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case KindBookingCreated:
		return d.bookingCreated(ctx, ev.SessionID)
	case KindSessionStatus:
		return d.sessionStatus(ctx, ev.SessionID)
	case KindCallbackRequested:
		return d.callbackRequested(ctx, ev.UserID, ev.Note)
	case KindTemporaryPassword:
		return d.sendMail(ctx, email.BuildTemporaryPasswordEmail(d.brand, email.TemporaryPasswordData{
			Name: ev.Name, Email: ev.Email, Password: ev.Password, Role: ev.Role,
		}))
	case KindAssignmentCreated:
		return d.assignmentCreated(ctx, ev.AssignmentID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
}

func (d *Dispatcher) sessionParties(ctx context.Context, sid uuid.UUID) (*repo.Session, *repo.User, *repo.Therapist, error) {
	s, err := d.dir.Session(ctx, sid)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load session: %w", err)
	}
	u, err := d.dir.User(ctx, s.UID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load client: %w", err)
	}
	t, err := d.dir.Therapist(ctx, s.TID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load therapist: %w", err)
	}
	return s, u, t, nil
}

func (d *Dispatcher) bookingCreated(ctx context.Context, sid uuid.UUID) error {
	s, u, t, err := d.sessionParties(ctx, sid)
	if err != nil {
		return err
	}
	return d.sendMail(ctx, email.BuildBookingRequestedEmail(d.brand, email.SessionData{
		RecipientName: t.Name,
		RecipientMail: t.Email,
		OtherParty:    u.Name,
		Date:          s.ScheduledDate.String(),
		StartTime:     s.StartTime.String(),
		EndTime:       s.EndTime.String(),
		Status:        s.Status,
	}))
}

func (d *Dispatcher) sessionStatus(ctx context.Context, sid uuid.UUID) error {
	s, u, t, err := d.sessionParties(ctx, sid)
	if err != nil {
		return err
	}

	mailErr := d.sendMail(ctx, email.BuildSessionStatusEmail(d.brand, email.SessionData{
		RecipientName: u.Name,
		RecipientMail: u.Email,
		OtherParty:    t.Name,
		Date:          s.ScheduledDate.String(),
		StartTime:     s.StartTime.String(),
		EndTime:       s.EndTime.String(),
		Status:        s.Status,
	}))

	var smsErr error
	if s.Status == repo.SessionApproved && u.Phone != "" && d.sms != nil && d.sms.Enabled() {
		smsErr = d.sms.SendReminder(ctx, u.Phone, map[string]string{
			"name":      u.Name,
			"therapist": t.Name,
			"date":      s.ScheduledDate.String(),
			"time":      s.StartTime.String(),
		})
		d.metrics.Notification(ctx, "sms", smsErr == nil)
	}

	return errors.Join(mailErr, smsErr)
}

func (d *Dispatcher) callbackRequested(ctx context.Context, uid uuid.UUID, note string) error {
	if len(d.admins) == 0 {
		return ErrNoRecipient
	}
	u, err := d.dir.User(ctx, uid)
	if err != nil {
		return fmt.Errorf("load client: %w", err)
	}
	return d.sendMail(ctx, email.BuildCallbackRequestEmail(d.brand, d.admins, email.CallbackRequestData{
		ClientName:  u.Name,
		ClientEmail: u.Email,
		ClientPhone: u.Phone,
		Note:        note,
	}))
}

func (d *Dispatcher) assignmentCreated(ctx context.Context, id uuid.UUID) error {
	a, err := d.dir.Assignment(ctx, id)
	if err != nil {
		return fmt.Errorf("load assignment: %w", err)
	}
	u, err := d.dir.User(ctx, a.ClientUID)
	if err != nil {
		return fmt.Errorf("load client: %w", err)
	}
	t, err := d.dir.Therapist(ctx, a.TherapistTID)
	if err != nil {
		return fmt.Errorf("load therapist: %w", err)
	}
	return d.sendMail(ctx, email.BuildAssignmentEmail(d.brand, email.AssignmentData{
		ClientName:    u.Name,
		ClientEmail:   u.Email,
		TherapistName: t.Name,
		Sessions:      a.SessionsCount,
	}))
}

// sendMail is a no-op when email is disabled.
func (d *Dispatcher) sendMail(ctx context.Context, m email.Message) error {
	if d.mail == nil || !d.mail.Enabled() {
		return nil
	}
	err := d.mail.Send(ctx, m)
	d.metrics.Notification(ctx, "email", err == nil)
	if err != nil {
		return fmt.Errorf("send %q: %w", m.Subject, err)
	}
	return nil
}
