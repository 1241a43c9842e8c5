package controllers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"congregationsite/internal/delivery/http/helpers"
)

// writeError maps err onto the response envelope and logs anything that is not a known domain error.
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if !helpers.WriteDomainError(w, err) {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
}

// eventIDParam returns the eventID path value. A value that is not a UUID cannot name an
// event, so it is answered with 404 and ok is false.
func eventIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(r.PathValue("eventID"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return "", false
	}
	return id.String(), true
}
