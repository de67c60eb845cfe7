package roomatch_errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrAlreadyExists      = errors.New("already exists")
)

// ValidationError reports a field that failed message validation.
// It unwraps to ErrInvalidInput so callers can match with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// InvalidRecipientError rejects a private message whose recipient cannot
// receive it: self-messaging, or the recipient account is not enabled.
type InvalidRecipientError struct {
	RecipientID uuid.UUID
	Reason      string
}

func (e *InvalidRecipientError) Error() string {
	return fmt.Sprintf("invalid recipient %s: %s", e.RecipientID, e.Reason)
}

func (e *InvalidRecipientError) Unwrap() error {
	return ErrInvalidInput
}

// InvalidParameterError rejects a group message: the group is closed or the
// author is not among its invitees.
type InvalidParameterError struct {
	Parameter string
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Parameter, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidInput
}
