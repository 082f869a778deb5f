package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services matches exactly one of
// these with errors.Is; anything that matches none is an internal failure.
var (
	ErrInvalidReference      = errors.New("invalid reference")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrAlreadyCancelled      = errors.New("already cancelled")
	ErrConsistency           = errors.New("consistency error")
)

// Concrete errors with client-facing messages.
var (
	ErrInvalidEventID      = newError(ErrInvalidReference, "Invalid event id")
	ErrInvalidBookingID    = newError(ErrInvalidReference, "Invalid booking id")
	ErrQtyNotPositive      = newError(ErrInvalidQuantity, "qty must be a positive integer")
	ErrNotEnoughTickets    = newError(ErrInsufficientInventory, "Not enough tickets available for this event")
	ErrEventNotFound       = newError(ErrNotFound, "Event not found")
	ErrBookingNotFound     = newError(ErrNotFound, "Booking not found")
	ErrBookingCancelled    = newError(ErrAlreadyCancelled, "Booking already cancelled")
	ErrNotBookingOwner     = newError(ErrForbidden, "Not authorized to cancel this booking")
	ErrAdminOnlyCreate     = newError(ErrForbidden, "Only admins can create events")
	ErrAdminOnlyDelete     = newError(ErrForbidden, "Only admins can delete events")
	ErrAdminOnlyBookings   = newError(ErrForbidden, "Only admins can view bookings for an event")
	ErrAuthRequired        = newError(ErrUnauthorized, "Authentication required")
	ErrInventoryReleaseGap = newError(ErrConsistency, "Inventory release did not match a stored event")
)

// Error pairs an error kind with the message shown to clients.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

// Error returns the client-facing message.
func (e *Error) Error() string { return e.msg }

// Unwrap returns the kind so errors.Is matches it.
func (e *Error) Unwrap() error { return e.kind }

// Message returns the client-facing message carried by err, if any.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.msg, true
	}
	return "", false
}
