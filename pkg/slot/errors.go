package slot

import "errors"

var (
	ErrInvalidClock = errors.New("invalid time of day, expected HH:MM")
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmptyRange   = errors.New("start time must be before end time")
	ErrInvalidDay   = errors.New("day_of_week must be between 0 and 6")
)
