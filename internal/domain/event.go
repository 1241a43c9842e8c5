package domain

import (
	"context"
	"time"
)

// Event represents a scheduled congregation gathering that may take reservations.
// swagger:model Event
type Event struct {
	ID               string     `json:"id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	Location         *string    `json:"location,omitempty"`
	StartsAt         time.Time  `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	RSVPDeadline     *time.Time `json:"rsvp_deadline,omitempty"`
	MaxCapacity      *int       `json:"max_capacity"`
	CurrentAttendees int        `json:"current_attendees"`
	RequiresRSVP     bool       `json:"requires_rsvp"`
	WaitlistEnabled  bool       `json:"waitlist_enabled"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, slug string, startsAt time.Time, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:           title,
		Slug:            slug,
		StartsAt:        startsAt,
		WaitlistEnabled: true,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// DeadlinePassed reports whether RSVPs are closed at now. The deadline instant itself is closed.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return e.RSVPDeadline != nil && !now.Before(*e.RSVPDeadline)
}

// Capacity evaluates the event's current snapshot for a party of the given size.
func (e *Event) Capacity(partySize int) CapacityReport {
	return EvaluateCapacity(e.MaxCapacity, e.CurrentAttendees, partySize, e.WaitlistEnabled)
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	// Delete removes the event. Returns ErrEventHasReservations while reservations reference it.
	Delete(ctx context.Context, id string) error
}

// CreateEventInput holds admin-supplied fields for a new event.
type CreateEventInput struct {
	Title           string
	Slug            string
	Description     *string
	Location        *string
	StartsAt        time.Time
	EndsAt          *time.Time
	RSVPDeadline    *time.Time
	MaxCapacity     *int
	RequiresRSVP    bool
	WaitlistEnabled *bool
}

// PublicEvent is the public view of an event including its live capacity report.
type PublicEvent struct {
	Event    *Event         `json:"event"`
	Capacity CapacityReport `json:"capacity"`
	RSVPOpen bool           `json:"rsvp_open"`
}

// EventService defines administrative and public event operations.
type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	GetPublicEvent(ctx context.Context, slug string) (*PublicEvent, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	DeleteEvent(ctx context.Context, eventID string) error
	GetEventStats(ctx context.Context, eventID string) (*EventStats, error)
}
