package domain

import (
	"context"
	"time"
)

// RSVPStatus is the lifecycle state of a reservation.
type RSVPStatus string

const (
	RSVPStatusConfirmed  RSVPStatus = "confirmed"
	RSVPStatusWaitlisted RSVPStatus = "waitlisted"
	RSVPStatusCancelled  RSVPStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPStatusConfirmed, RSVPStatusWaitlisted, RSVPStatusCancelled:
		return true
	}
	return false
}

// RSVP is a registrant's reservation of one or more seats at an event.
// swagger:model RSVP
type RSVP struct {
	ID                  string     `json:"id"`
	EventID             string     `json:"event_id"`
	ConfirmationCode    string     `json:"confirmation_code"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Phone               *string    `json:"phone,omitempty"`
	NumberOfGuests      int        `json:"number_of_guests"`
	DietaryRestrictions *string    `json:"dietary_restrictions,omitempty"`
	SpecialNeeds        *string    `json:"special_needs,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	Status              RSVPStatus `json:"status"`
	IdempotencyKey      *string    `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// PartySize is the number of seats the reservation claims: the registrant plus guests.
func (r *RSVP) PartySize() int {
	return 1 + r.NumberOfGuests
}

// RSVPInput is the registrant-supplied part of a submission.
type RSVPInput struct {
	Name                string
	Email               string
	Phone               *string
	NumberOfGuests      int
	DietaryRestrictions *string
	SpecialNeeds        *string
	Notes               *string
}

// NotificationOutcome records what happened to the best-effort confirmation email.
type NotificationOutcome string

const (
	NotificationSent    NotificationOutcome = "sent"
	NotificationFailed  NotificationOutcome = "failed"
	NotificationSkipped NotificationOutcome = "skipped"
)

// RSVPResult is returned by a submission: the durable reservation, a human-readable
// message and the notification outcome.
// swagger:model RSVPResult
type RSVPResult struct {
	Reservation  *RSVP               `json:"reservation"`
	Message      string              `json:"message"`
	Notification NotificationOutcome `json:"notification"`
}

// EventStats summarises reservations of one event for the admin view.
// swagger:model EventStats
type EventStats struct {
	EventID          string `json:"event_id"`
	MaxCapacity      *int   `json:"max_capacity"`
	CurrentAttendees int    `json:"current_attendees"`
	Remaining        *int   `json:"remaining"`
	ConfirmedCount   int    `json:"confirmed_count"`
	ConfirmedSeats   int    `json:"confirmed_seats"`
	WaitlistedCount  int    `json:"waitlisted_count"`
	WaitlistedSeats  int    `json:"waitlisted_seats"`
	CancelledCount   int    `json:"cancelled_count"`
}

// EventTx is the handle passed to WithinEventTx. The event row is locked for the
// lifetime of the handle; all writes commit or roll back together.
type EventTx interface {
	// Event returns the locked event snapshot.
	Event() *Event
	FindByIdempotencyKey(ctx context.Context, key string) (*RSVP, error)
	FindByConfirmationCode(ctx context.Context, code string) (*RSVP, error)
	// Insert stores rsvp and sets its ID. Returns ErrDuplicateConfirmationCode when the code is taken.
	Insert(ctx context.Context, rsvp *RSVP) error
	SetStatus(ctx context.Context, rsvpID string, status RSVPStatus) error
	// AdjustAttendees adds delta to current_attendees. A positive delta is applied only if the
	// result stays within max_capacity (else ErrCapacityExceeded); the count never drops below zero.
	AdjustAttendees(ctx context.Context, delta int) error
}

// RSVPRepository defines storage operations for reservations.
type RSVPRepository interface {
	// WithinEventTx locks the event row and runs fn in one transaction. It returns ErrNotFound
	// when the event does not exist. The transaction commits only when fn returns nil.
	WithinEventTx(ctx context.Context, eventID string, fn func(tx EventTx) error) error
	GetByConfirmationCode(ctx context.Context, code string) (*RSVP, error)
	ListByEventID(ctx context.Context, eventID string, status *RSVPStatus, params PaginationParams) ([]*RSVP, int, error)
	StatsByEventID(ctx context.Context, eventID string) (*EventStats, error)
}

// RSVPService defines the public reservation flow and its admin counterparts.
type RSVPService interface {
	// Submit admits a reservation for the event. created is false when the idempotency key
	// matched an earlier submission and the stored reservation is returned unchanged.
	Submit(ctx context.Context, eventID string, in RSVPInput, idempotencyKey string) (result *RSVPResult, created bool, err error)
	GetByConfirmationCode(ctx context.Context, code string) (*RSVP, error)
	Cancel(ctx context.Context, code, email string) (*RSVP, error)
	Promote(ctx context.Context, code string) (*RSVPResult, error)
	ListByEvent(ctx context.Context, eventID string, status *RSVPStatus, params PaginationParams) ([]*RSVP, int, error)
}
