package pasetotoken

import (
	"errors"
	"fmt"
)

var (
	ErrMisconfigured = errors.New("paseto: misconfigured")
	ErrInvalidToken  = errors.New("paseto: invalid token")
)

func misconfigured(msg string) error { return fmt.Errorf("%w: %s", ErrMisconfigured, msg) }

func invalidToken(cause error) error { return fmt.Errorf("%w: %v", ErrInvalidToken, cause) }
