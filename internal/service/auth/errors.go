package auth

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountNotFound    = errors.New("account not found")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnknownRole        = errors.New("unknown role")
	ErrForbidden          = errors.New("forbidden")
)
