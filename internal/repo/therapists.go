package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Constraint names as generated by PostgreSQL for the UNIQUE columns.
const (
	ConstraintTherapistEmail  = "therapists_email_key"
	ConstraintTherapistUserID = "therapists_user_id_key"
	ConstraintUserEmail       = "users_email_key"
	ConstraintAccountEmail    = "accounts_email_key"
	ConstraintReportSession   = "reports_session_id_key"
)

// Foreign keys on sessions, named the PostgreSQL default way.
const (
	ConstraintSessionTherapist = "sessions_tid_fkey"
	ConstraintSessionClient    = "sessions_uid_fkey"
	ConstraintSessionPackage   = "sessions_package_pid_fkey"
)

type TherapistRepo struct{ base }

type TherapistPatch struct {
	Name              *string
	Email             *string
	Bio               *string
	Education         *string
	Languages         *string
	AreasCovered      *string
	AvailabilityHours *string
	UserID            *uuid.UUID
	// Image replaces both data and mime when non-nil.
	Image *Image
}

type Image struct {
	Data []byte
	Mime string
}

// listColumns leaves the image blob out of list queries.
var therapistListColumns = []string{
	"tid", "user_id", "name", "email", "bio", "education", "languages",
	"areas_covered", "image_mime", "availability_hours", "created_at", "updated_at",
	"NULL::bytea AS image_data",
}

func (r *TherapistRepo) Create(ctx context.Context, t *Therapist) error {
	if t.TID == uuid.Nil {
		t.TID = uuid.New()
	}
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))

	q := psql.Insert("therapists").
		Columns("tid", "user_id", "name", "email", "bio", "education", "languages",
			"areas_covered", "image_data", "image_mime", "availability_hours").
		Values(t.TID, t.UserID, t.Name, t.Email, t.Bio, t.Education, t.Languages,
			t.AreasCovered, t.ImageData, t.ImageMime, t.AvailabilityHours).
		Suffix("RETURNING *")
	if err := r.get(ctx, t, q); err != nil {
		return fmt.Errorf("create therapist: %w", err)
	}
	return nil
}

func (r *TherapistRepo) Get(ctx context.Context, tid uuid.UUID) (*Therapist, error) {
	return r.one(ctx, sq.Eq{"tid": tid})
}

func (r *TherapistRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*Therapist, error) {
	return r.one(ctx, sq.Eq{"user_id": userID})
}

func (r *TherapistRepo) GetByEmail(ctx context.Context, email string) (*Therapist, error) {
	return r.one(ctx, sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *TherapistRepo) one(ctx context.Context, where sq.Sqlizer) (*Therapist, error) {
	var t Therapist
	if err := r.get(ctx, &t, psql.Select("*").From("therapists").Where(where)); err != nil {
		return nil, fmt.Errorf("get therapist: %w", err)
	}
	return &t, nil
}

func (r *TherapistRepo) EmailTaken(ctx context.Context, email string, except *uuid.UUID) (bool, error) {
	q := psql.Select("1").From("therapists").Where(sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
	if except != nil {
		q = q.Where(sq.NotEq{"tid": *except})
	}
	ok, err := r.exists(ctx, q)
	if err != nil {
		return false, fmt.Errorf("check therapist email: %w", err)
	}
	return ok, nil
}

func (r *TherapistRepo) UserIDTaken(ctx context.Context, userID uuid.UUID, except *uuid.UUID) (bool, error) {
	q := psql.Select("1").From("therapists").Where(sq.Eq{"user_id": userID})
	if except != nil {
		q = q.Where(sq.NotEq{"tid": *except})
	}
	ok, err := r.exists(ctx, q)
	if err != nil {
		return false, fmt.Errorf("check therapist user: %w", err)
	}
	return ok, nil
}

func (r *TherapistRepo) List(ctx context.Context) ([]*Therapist, error) {
	out := []*Therapist{}
	if err := r.list(ctx, &out, psql.Select(therapistListColumns...).From("therapists").OrderBy("name")); err != nil {
		return nil, fmt.Errorf("list therapists: %w", err)
	}
	return out, nil
}

func (r *TherapistRepo) Update(ctx context.Context, tid uuid.UUID, p TherapistPatch) (*Therapist, error) {
	if p.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &e
	}
	q := psql.Update("therapists").Set("updated_at", time.Now().UTC())
	q = set(q, "name", p.Name)
	q = set(q, "email", p.Email)
	q = set(q, "bio", p.Bio)
	q = set(q, "education", p.Education)
	q = set(q, "languages", p.Languages)
	q = set(q, "areas_covered", p.AreasCovered)
	q = set(q, "availability_hours", p.AvailabilityHours)
	q = set(q, "user_id", p.UserID)
	if p.Image != nil {
		q = q.Set("image_data", p.Image.Data).Set("image_mime", p.Image.Mime)
	}

	var t Therapist
	if err := r.get(ctx, &t, q.Where(sq.Eq{"tid": tid}).Suffix("RETURNING *")); err != nil {
		return nil, fmt.Errorf("update therapist: %w", err)
	}
	return &t, nil
}

func (r *TherapistRepo) Delete(ctx context.Context, tid uuid.UUID) error {
	if err := r.exec(ctx, psql.Delete("therapists").Where(sq.Eq{"tid": tid})); err != nil {
		return fmt.Errorf("delete therapist: %w", err)
	}
	return nil
}
