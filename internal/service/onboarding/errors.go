package onboarding

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrFormNotFound  = errors.New("no onboarding response for this user")
	ErrFormExists    = errors.New("onboarding response already submitted")
	ErrNotJSONObject = errors.New("onboarding response must be a JSON object")
	ErrForbidden     = errors.New("not allowed to access this onboarding response")
)
