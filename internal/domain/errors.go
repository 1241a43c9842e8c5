package domain

import "errors"

// Generic sentinel errors shared by repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

// Event administration errors.
var (
	ErrDuplicateSlug        = errors.New("event slug already in use")
	ErrEventHasReservations = errors.New("event still has reservations")
)

// RSVP admission errors. Each maps to a stable error code at the HTTP layer.
var (
	ErrRSVPNotRequired = errors.New("rsvp is not enabled for this event")
	ErrDeadlinePassed  = errors.New("rsvp deadline has passed")
	ErrEventFull       = errors.New("event is full and the waitlist is closed")
	// ErrCapacityExceeded is returned by the conditional attendee increment when the
	// resulting total would exceed max_capacity.
	ErrCapacityExceeded = errors.New("attendee increment would exceed capacity")
	ErrAlreadyCancelled = errors.New("reservation already cancelled")
	ErrInvalidStatus    = errors.New("reservation status does not allow this transition")
	// ErrDuplicateConfirmationCode is returned by EventTx.Insert when the generated code is taken.
	ErrDuplicateConfirmationCode = errors.New("confirmation code already in use")
	ErrConfirmationCodeExhausted = errors.New("could not allocate a unique confirmation code")
)

// ValidationError carries field-level messages for a rejected request.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	msg := ErrInvalidInput.Error() + ": " + e.Fields[0]
	for _, f := range e.Fields[1:] {
		msg += "; " + f
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
