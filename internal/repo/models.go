package repo

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

const (
	CallRequestNone      = "none"
	CallRequestPending   = "pending"
	CallRequestCompleted = "completed"
)

const (
	AssignmentActive    = "active"
	AssignmentEnded     = "ended"
	AssignmentCancelled = "cancelled"
	AssignmentInactive  = "inactive"
)

func ValidAssignmentStatus(s string) bool {
	switch s {
	case AssignmentActive, AssignmentEnded, AssignmentCancelled, AssignmentInactive:
		return true
	}
	return false
}

const (
	SessionPending   = "pending"
	SessionApproved  = "approved"
	SessionDeclined  = "declined"
	SessionCancelled = "cancelled"
	SessionCompleted = "completed"
)

// deadSessionStatuses do not occupy their time range.
var deadSessionStatuses = []string{SessionCancelled, SessionDeclined}

// ---------------------------------------------------------------------------
// Rows
// ---------------------------------------------------------------------------

type Account struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// User is a client of the practice.
type User struct {
	UID               uuid.UUID       `db:"uid" json:"uid"`
	AccountID         *uuid.UUID      `db:"account_id" json:"account_id"`
	Name              string          `db:"name" json:"name"`
	Email             string          `db:"email" json:"email"`
	Phone             string          `db:"phone" json:"phone"`
	IsActive          bool            `db:"is_active" json:"is_active"`
	AssignedTID       *uuid.UUID      `db:"assigned_tid" json:"assigned_tid"`
	CallRequestStatus string          `db:"call_request_status" json:"call_request_status"`
	FormResponse      *types.JSONText `db:"form_response" json:"form_response"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

type Therapist struct {
	TID               uuid.UUID  `db:"tid" json:"tid"`
	UserID            *uuid.UUID `db:"user_id" json:"user_id"`
	Name              string     `db:"name" json:"name"`
	Email             string     `db:"email" json:"email"`
	Bio               string     `db:"bio" json:"bio"`
	Education         string     `db:"education" json:"education"`
	Languages         string     `db:"languages" json:"languages"`
	AreasCovered      string     `db:"areas_covered" json:"areas_covered"`
	ImageData         []byte     `db:"image_data" json:"-"`
	ImageMime         string     `db:"image_mime" json:"-"`
	AvailabilityHours string     `db:"availability_hours" json:"availability_hours"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// ImageURI renders the stored image as a data URI, or "" when there is none.
func (t Therapist) ImageURI() string {
	if len(t.ImageData) == 0 {
		return ""
	}
	mime := t.ImageMime
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(t.ImageData)
}

func (t Therapist) MarshalJSON() ([]byte, error) {
	type plain Therapist
	var image *string
	if uri := t.ImageURI(); uri != "" {
		image = &uri
	}
	return json.Marshal(struct {
		plain
		ImageData *string `json:"image_data"`
	}{plain(t), image})
}

type Package struct {
	PID           uuid.UUID       `db:"pid" json:"pid"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Cost          decimal.Decimal `db:"cost" json:"cost"`
	Duration      int             `db:"duration" json:"duration"`
	MinCommitment int             `db:"min_commitment" json:"min_commitment"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

type Assignment struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	ClientUID       uuid.UUID     `db:"client_uid" json:"client_uid"`
	TherapistTID    uuid.UUID     `db:"therapist_tid" json:"therapist_tid"`
	Status          string        `db:"status" json:"status"`
	StartDate       slot.Date     `db:"start_date" json:"start_date"`
	EndDate         slot.NullDate `db:"end_date" json:"end_date"`
	SessionsCount   int           `db:"sessions_count" json:"sessions_count"`
	NextSessionDate slot.NullDate `db:"next_session_date" json:"next_session_date"`
	Notes           string        `db:"notes" json:"notes"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// Schedule is one weekly availability window of a therapist.
type Schedule struct {
	ScheduleID uuid.UUID  `db:"schedule_id" json:"schedule_id"`
	TID        uuid.UUID  `db:"tid" json:"tid"`
	DayOfWeek  int        `db:"day_of_week" json:"day_of_week"`
	StartTime  slot.Clock `db:"start_time" json:"start_time"`
	EndTime    slot.Clock `db:"end_time" json:"end_time"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

func (s Schedule) Range() slot.Range {
	return slot.Range{Start: s.StartTime, End: s.EndTime}
}

type Session struct {
	SID               uuid.UUID  `db:"sid" json:"sid"`
	UID               uuid.UUID  `db:"uid" json:"uid"`
	TID               uuid.UUID  `db:"tid" json:"tid"`
	PackagePID        *uuid.UUID `db:"package_pid" json:"package_pid"`
	ScheduledDate     slot.Date  `db:"scheduled_date" json:"scheduled_date"`
	StartTime         slot.Clock `db:"start_time" json:"start_time"`
	EndTime           slot.Clock `db:"end_time" json:"end_time"`
	Status            string     `db:"status" json:"status"`
	Verified          bool       `db:"verified" json:"verified"`
	ReportSubmittedAt *time.Time `db:"report_submitted_at" json:"report_submitted_at"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

func (s Session) Range() slot.Range {
	return slot.Range{Start: s.StartTime, End: s.EndTime}
}

type Report struct {
	ReportID                 uuid.UUID      `db:"report_id" json:"report_id"`
	SessionID                uuid.UUID      `db:"session_id" json:"session_id"`
	Activities               pq.StringArray `db:"activities" json:"activities"`
	MoodStart                string         `db:"mood_start" json:"mood_start"`
	MoodEnd                  string         `db:"mood_end" json:"mood_end"`
	Engagement               string         `db:"engagement" json:"engagement"`
	KeyObservations          string         `db:"key_observations" json:"key_observations"`
	OverallComments          string         `db:"overall_comments" json:"overall_comments"`
	ImprovementsOrChallenges string         `db:"improvements_or_challenges" json:"improvements_or_challenges"`
	SubmittedAt              time.Time      `db:"submitted_at" json:"submitted_at"`
}
