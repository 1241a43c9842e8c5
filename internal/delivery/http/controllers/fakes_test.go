package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"congregationsite/internal/delivery/http/helpers"
	"congregationsite/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testEventID = "7b0c7c5e-3f4e-4c61-9d7a-0f5b5d0c2a11"

// fakeRSVPService implements domain.RSVPService for handler tests.
type fakeRSVPService struct {
	submitResult  *domain.RSVPResult
	submitCreated bool
	submitErr     error
	rsvp          *domain.RSVP
	err           error
	listResult    []*domain.RSVP
	listTotal     int

	lastEventID string
	lastInput   domain.RSVPInput
	lastKey     string
	lastCode    string
	lastEmail   string
	lastStatus  *domain.RSVPStatus
	lastParams  domain.PaginationParams
}

func (f *fakeRSVPService) Submit(ctx context.Context, eventID string, in domain.RSVPInput, key string) (*domain.RSVPResult, bool, error) {
	f.lastEventID, f.lastInput, f.lastKey = eventID, in, key
	return f.submitResult, f.submitCreated, f.submitErr
}

func (f *fakeRSVPService) GetByConfirmationCode(ctx context.Context, code string) (*domain.RSVP, error) {
	f.lastCode = code
	return f.rsvp, f.err
}

func (f *fakeRSVPService) Cancel(ctx context.Context, code, email string) (*domain.RSVP, error) {
	f.lastCode, f.lastEmail = code, email
	return f.rsvp, f.err
}

func (f *fakeRSVPService) Promote(ctx context.Context, code string) (*domain.RSVPResult, error) {
	f.lastCode = code
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RSVPResult{Reservation: f.rsvp, Notification: domain.NotificationSent}, nil
}

func (f *fakeRSVPService) ListByEvent(ctx context.Context, eventID string, status *domain.RSVPStatus, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	f.lastEventID, f.lastStatus, f.lastParams = eventID, status, params
	return f.listResult, f.listTotal, f.err
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	event      *domain.Event
	public     *domain.PublicEvent
	stats      *domain.EventStats
	listResult []*domain.Event
	listTotal  int
	err        error

	lastInput   domain.CreateEventInput
	lastEventID string
	lastSlug    string
	lastParams  domain.PaginationParams
}

func (f *fakeEventService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	f.lastInput = in
	return f.event, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	f.lastEventID = eventID
	return f.event, f.err
}

func (f *fakeEventService) GetPublicEvent(ctx context.Context, slug string) (*domain.PublicEvent, error) {
	f.lastSlug = slug
	return f.public, f.err
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastParams = params
	return f.listResult, f.listTotal, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID string) error {
	f.lastEventID = eventID
	return f.err
}

func (f *fakeEventService) GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	f.lastEventID = eventID
	return f.stats, f.err
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

// envelope decodes the response into the API envelope with data left raw.
type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}
