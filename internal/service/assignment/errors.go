package assignment

import "errors"

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrTherapistNotFound  = errors.New("therapist not found")
	ErrInvalidStatus      = errors.New("status must be one of active, ended, cancelled, inactive")
	ErrInvalidDates       = errors.New("end_date must not be before start_date")
	ErrForbidden          = errors.New("not allowed to access this assignment")
)
