package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTherapistNotFound  = errors.New("therapist not found")
	ErrEmailAlreadyExists = errors.New("Email already exists.")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPhone       = errors.New("invalid phone number for the configured region")
	ErrNameRequired       = errors.New("name is required")
	ErrForbidden          = errors.New("not allowed to access this user")
)
