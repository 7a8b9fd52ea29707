package pricing

import "errors"

var (
	ErrPackageNotFound = errors.New("package not found")
	ErrMissingField    = errors.New("name, cost and duration are required")
	ErrInvalidCost     = errors.New("cost must not be negative")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrPackageInUse    = errors.New("package is referenced by sessions")
)
