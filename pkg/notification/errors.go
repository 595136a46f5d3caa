package notification

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthorized        = errors.New("notifications are not authorized")
	ErrMissingIdentifier    = errors.New("request identifier is empty")
	ErrInvalidTrigger       = errors.New("trigger delay must be positive")
	ErrRepeatingUnsupported = errors.New("repeating triggers are not supported")
)

// AuthorizationError is returned when an operation needs authorization the
// user has not given.
type AuthorizationError struct {
	Status AuthorizationStatus
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("notifications not authorized (status: %s)", e.Status)
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrNotAuthorized
}

// SchedulingError is returned when the center rejects a request.
type SchedulingError struct {
	Identifier string
	Err        error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("failed to schedule notification %s: %v", e.Identifier, e.Err)
}

func (e *SchedulingError) Unwrap() error { return e.Err }

// RemovalError is returned when the center fails to remove pending requests.
type RemovalError struct {
	Identifiers []string
	Err         error
}

func (e *RemovalError) Error() string {
	if len(e.Identifiers) == 0 {
		return fmt.Sprintf("failed to remove pending notifications: %v", e.Err)
	}
	return fmt.Sprintf("failed to remove pending notifications [%s]: %v", strings.Join(e.Identifiers, ", "), e.Err)
}

func (e *RemovalError) Unwrap() error { return e.Err }
