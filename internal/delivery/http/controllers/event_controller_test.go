package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"congregationsite/internal/delivery/http/helpers"
	"congregationsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventController_CreateEvent(t *testing.T) {
	created := &domain.Event{ID: testEventID, Slug: "harvest-supper", Title: "Harvest Supper"}

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"title":"Harvest Supper","starts_at":"2026-11-01T18:30:00Z","max_capacity":80,"requires_rsvp":true,"waitlist_enabled":false}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "bad timestamp",
			body:       `{"title":"Harvest Supper","starts_at":"next sunday"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "validation",
			body:       `{"title":""}`,
			err:        &domain.ValidationError{Fields: []string{"title is required"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "duplicate slug",
			body:       `{"title":"Harvest Supper","slug":"harvest-supper","starts_at":"2026-11-01T18:30:00Z"}`,
			err:        domain.ErrDuplicateSlug,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeDuplicateSlug,
		},
		{
			name:       "storage failure",
			body:       `{"title":"Harvest Supper","starts_at":"2026-11-01T18:30:00Z"}`,
			err:        errors.New("create event: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{event: created, err: tt.err}
			req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			NewEventController(testLogger, svc).CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			env := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			var got domain.Event
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, "harvest-supper", got.Slug)
			assert.Equal(t, time.Date(2026, 11, 1, 18, 30, 0, 0, time.UTC), svc.lastInput.StartsAt)
			require.NotNil(t, svc.lastInput.MaxCapacity)
			assert.Equal(t, 80, *svc.lastInput.MaxCapacity)
			require.NotNil(t, svc.lastInput.WaitlistEnabled)
			assert.False(t, *svc.lastInput.WaitlistEnabled)
			assert.True(t, svc.lastInput.RequiresRSVP)
		})
	}
}

func TestEventController_GetPublicEvent(t *testing.T) {
	remaining := 4
	svc := &fakeEventService{public: &domain.PublicEvent{
		Event:    &domain.Event{ID: testEventID, Slug: "harvest-supper"},
		Capacity: domain.CapacityReport{Available: true, Remaining: &remaining},
		RSVPOpen: true,
	}}
	req := httptest.NewRequest(http.MethodGet, "/events/harvest-supper", nil)
	req.SetPathValue("slug", "harvest-supper")
	rr := httptest.NewRecorder()

	NewEventController(testLogger, svc).GetPublicEvent(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "harvest-supper", svc.lastSlug)
	var got domain.PublicEvent
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
	assert.True(t, got.RSVPOpen)
	require.NotNil(t, got.Capacity.Remaining)
	assert.Equal(t, 4, *got.Capacity.Remaining)

	rr = httptest.NewRecorder()
	NewEventController(testLogger, &fakeEventService{err: domain.ErrNotFound}).GetPublicEvent(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventController_ListEvents(t *testing.T) {
	svc := &fakeEventService{listResult: []*domain.Event{{ID: "a"}}, listTotal: 1}
	req := httptest.NewRequest(http.MethodGet, "/admin/events?page_size=500", nil)
	rr := httptest.NewRecorder()

	NewEventController(testLogger, svc).ListEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, helpers.MaxPageSize, svc.lastParams.PageSize)
	var got ListEventsResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Pagination.TotalPages)
}

func TestEventController_DeleteEvent(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		err        error
		wantStatus int
	}{
		{"deleted", testEventID, nil, http.StatusNoContent},
		{"has reservations", testEventID, domain.ErrEventHasReservations, http.StatusConflict},
		{"missing", testEventID, domain.ErrNotFound, http.StatusNotFound},
		{"not a uuid", "42", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{err: tt.err}
			req := httptest.NewRequest(http.MethodDelete, "/admin/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			NewEventController(testLogger, svc).DeleteEvent(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, testEventID, svc.lastEventID)
				assert.Zero(t, rr.Body.Len())
			}
		})
	}
}

func TestEventController_GetEventStats(t *testing.T) {
	remaining := 3
	svc := &fakeEventService{stats: &domain.EventStats{EventID: testEventID, ConfirmedCount: 5, ConfirmedSeats: 17, Remaining: &remaining}}
	req := httptest.NewRequest(http.MethodGet, "/admin/events/x/stats", nil)
	req.SetPathValue("eventID", testEventID)
	rr := httptest.NewRecorder()

	NewEventController(testLogger, svc).GetEventStats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.EventStats
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
	assert.Equal(t, 17, got.ConfirmedSeats)
	require.NotNil(t, got.Remaining)
	assert.Equal(t, 3, *got.Remaining)
}
