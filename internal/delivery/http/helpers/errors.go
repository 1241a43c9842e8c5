package helpers

import (
	"errors"
	"net/http"

	"congregationsite/internal/domain"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var domainErrors = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "not found"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden, "forbidden"},
	{domain.ErrRSVPNotRequired, http.StatusBadRequest, ErrCodeRSVPNotRequired, "this event does not take RSVPs"},
	{domain.ErrDeadlinePassed, http.StatusBadRequest, ErrCodeDeadlinePassed, "the RSVP deadline for this event has passed"},
	{domain.ErrEventFull, http.StatusConflict, ErrCodeEventFull, "this event is full"},
	{domain.ErrCapacityExceeded, http.StatusConflict, ErrCodeEventFull, "this event is full"},
	{domain.ErrAlreadyCancelled, http.StatusConflict, ErrCodeAlreadyCancelled, "reservation is already cancelled"},
	{domain.ErrInvalidStatus, http.StatusConflict, ErrCodeInvalidStatus, "only waitlisted reservations can be promoted"},
	{domain.ErrDuplicateSlug, http.StatusConflict, ErrCodeDuplicateSlug, "an event with this slug already exists"},
	{domain.ErrEventHasReservations, http.StatusConflict, ErrCodeEventHasReservations, "event still has reservations"},
}

// WriteDomainError maps a service error onto the response envelope. It reports whether
// the error was a known domain error; unknown errors are written as 500 with a generic
// message so storage details never reach the client.
func WriteDomainError(w http.ResponseWriter, err error) bool {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		WriteJSONErrorDetails(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid input", verr.Fields)
		return true
	}
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			WriteJSONError(w, m.status, m.code, m.message)
			return true
		}
	}
	WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	return false
}
