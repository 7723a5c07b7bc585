package models

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers classify failures with errors.Is against these.
var (
	ErrUnauthenticated       = errors.New("unauthorized")
	ErrForbidden             = errors.New("access denied")
	ErrNotFound              = errors.New("not found")
	ErrInvalidTicketType     = errors.New("ticket type not found")
	ErrInsufficientInventory = errors.New("not enough tickets available")
	ErrDuplicateBooking      = errors.New("you have already made a booking for this event")
	ErrInvalidCode           = errors.New("invalid verification code")
	ErrCodeExpired           = errors.New("verification code has expired")
	ErrValidation            = errors.New("invalid input")
	ErrConflict              = errors.New("already exists")
)

var (
	ErrEventNotFound      = kindError("event not found", ErrNotFound)
	ErrUserNotFound       = kindError("user not found", ErrNotFound)
	ErrBookingNotFound    = kindError("booking not found", ErrNotFound)
	ErrInvalidCredentials = kindError("invalid email/username or password", ErrUnauthenticated)
	ErrUsernameTaken      = kindError("username is already taken", ErrConflict)
	ErrAlreadyVerified    = kindError("user already verified", ErrConflict)
	ErrEventExists        = kindError("event already exists", ErrConflict)
	ErrNotOrganizer       = kindError("only organizers can manage events", ErrForbidden)
)

type classifiedError struct {
	msg  string
	kind error
}

func (e *classifiedError) Error() string { return e.msg }
func (e *classifiedError) Unwrap() error { return e.kind }

func kindError(msg string, kind error) error {
	return &classifiedError{msg: msg, kind: kind}
}

// NewValidationError returns an ErrValidation carrying a caller-facing message.
func NewValidationError(format string, args ...interface{}) error {
	return kindError(fmt.Sprintf(format, args...), ErrValidation)
}

// InsufficientInventoryError reports the quantity left for the requested
// ticket type at the time of the check.
type InsufficientInventoryError struct {
	TicketType string
	Remaining  int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("only %d tickets available for %s", e.Remaining, e.TicketType)
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }
