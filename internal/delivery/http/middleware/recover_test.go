package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"congregationsite/internal/delivery/http/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	handler := Recover(testLogger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	}))
	rr := httptest.NewRecorder()

	require.NotPanics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/events/x/rsvps", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, helpers.ErrCodeInternalError, env.Error.Code)
}

func TestRecover_PassesThrough(t *testing.T) {
	handler := Recover(testLogger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
}
