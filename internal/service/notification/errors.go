package notification

import "errors"

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrClosed      = errors.New("notification queue is closed")
	ErrUnknownKind = errors.New("unknown notification kind")
	ErrNoRecipient = errors.New("notification has no recipient")
)
