package notification

import "github.com/google/uuid"

type Kind string

const (
	KindBookingCreated    Kind = "booking_created"
	KindSessionStatus     Kind = "session_status"
	KindCallbackRequested Kind = "callback_requested"
	KindTemporaryPassword Kind = "temporary_password"
	KindAssignmentCreated Kind = "assignment_created"
)

// Event is what services publish. Only the fields relevant to Kind are set;
// the dispatcher loads everything else itself.
type Event struct {
	Kind Kind

	SessionID    uuid.UUID
	UserID       uuid.UUID
	AssignmentID uuid.UUID

	// temporary password
	Name     string
	Email    string
	Password string
	Role     string

	Note string
}

func BookingCreated(sid uuid.UUID) Event { return Event{Kind: KindBookingCreated, SessionID: sid} }

func SessionStatusChanged(sid uuid.UUID) Event { return Event{Kind: KindSessionStatus, SessionID: sid} }

func CallbackRequested(uid uuid.UUID, note string) Event {
	return Event{Kind: KindCallbackRequested, UserID: uid, Note: note}
}

func AssignmentCreated(id uuid.UUID) Event { return Event{Kind: KindAssignmentCreated, AssignmentID: id} }

func TemporaryPassword(name, email, password, role string) Event {
	return Event{Kind: KindTemporaryPassword, Name: name, Email: email, Password: password, Role: role}
}
