package session

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrTherapistNotFound  = errors.New("therapist not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrPackageNotFound    = errors.New("package not found")
	ErrClientRequired     = errors.New("a client profile is required to book")
	ErrInvalidTimeRange   = errors.New("end_time must be after start_time")
	ErrOutsideSchedule    = errors.New("requested time is outside the therapist's schedule")
	ErrOverlappingSession = errors.New("therapist already has a session at that time")
	ErrInvalidStatus      = errors.New("unknown session status")
	ErrInvalidTransition  = errors.New("status change not allowed")
	ErrForbidden          = errors.New("not allowed to access this session")
)
