package therapist

import "errors"

var (
	ErrTherapistNotFound = errors.New("therapist not found")
	ErrEmailExists       = errors.New("Email already exists.")
	ErrUserAlreadyLinked = errors.New("account is already linked to a therapist")
	ErrInvalidImage      = errors.New("image must be a data URI or base64 encoded")
	ErrImageTooLarge     = errors.New("image is too large")
	ErrNameRequired      = errors.New("name and email are required")
	ErrTherapistInUse    = errors.New("therapist still has sessions or assignments")
	ErrForbidden         = errors.New("only the therapist or an admin may change this profile")
)
