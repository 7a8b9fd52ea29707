package report

import "errors"

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrReportExists    = errors.New("a report for this session already exists")
	ErrInvalidMood     = errors.New(`mood must be one of "not in good mood", "neutral", "in a good mood"`)
	ErrInvalidEngage   = errors.New(`engagement must be one of "low", "medium", "high"`)
	ErrForbidden       = errors.New("only the session's therapist or an admin may write its report")
)
