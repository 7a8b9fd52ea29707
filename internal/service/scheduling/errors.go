package scheduling

import "errors"

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrTherapistNotFound = errors.New("therapist not found")
	ErrOverlappingSlot   = errors.New("time slot overlaps with an existing slot")
	ErrInvalidTimeRange  = errors.New("end_time must be after start_time")
	ErrInvalidDay        = errors.New("day_of_week must be between 0 and 6")
	ErrForbidden         = errors.New("only the therapist or an admin may manage this schedule")
)
