package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"congregationsite/internal/domain"
)

const (
	maxTitleLen     = 200
	maxSlugLen      = 80
	maxSlugAttempts = 5
)

var (
	slugRegexp   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
)

type eventService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var errs []string
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		errs = append(errs, "title is required")
	} else if utf8.RuneCountInString(in.Title) > maxTitleLen {
		errs = append(errs, fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if in.StartsAt.IsZero() {
		errs = append(errs, "starts_at is required")
	}
	if in.EndsAt != nil && !in.EndsAt.After(in.StartsAt) {
		errs = append(errs, "ends_at must be after starts_at")
	}
	if in.MaxCapacity != nil && *in.MaxCapacity < 1 {
		errs = append(errs, "max_capacity must be at least 1")
	}

	derived := strings.TrimSpace(in.Slug) == ""
	slug := slugify(in.Slug)
	if derived {
		slug = slugify(in.Title)
	}
	if !derived && (slug != strings.TrimSpace(in.Slug) || !slugRegexp.MatchString(slug)) {
		errs = append(errs, "slug must contain only lowercase letters, digits and single hyphens")
	}
	if in.Title != "" && slug == "" {
		errs = append(errs, "slug could not be derived from title")
	}
	if len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}

	now := s.now()
	event := domain.NewEvent(in.Title, slug, in.StartsAt, now, now)
	event.Description = in.Description
	event.Location = in.Location
	event.EndsAt = in.EndsAt
	event.RSVPDeadline = in.RSVPDeadline
	event.MaxCapacity = in.MaxCapacity
	event.RequiresRSVP = in.RequiresRSVP
	if in.WaitlistEnabled != nil {
		event.WaitlistEnabled = *in.WaitlistEnabled
	}

	// A derived slug that collides gets a numeric suffix; an explicit one is reported.
	for attempt := 1; ; attempt++ {
		err := s.eventRepo.Create(ctx, event)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, fmt.Errorf("create event: %w", err)
		}
		if !derived || attempt >= maxSlugAttempts {
			return nil, domain.ErrDuplicateSlug
		}
		event.Slug = fmt.Sprintf("%s-%d", slug, attempt+1)
	}
}

// slugify lowercases s and collapses every run of non-alphanumerics into one hyphen.
func slugify(s string) string {
	s = nonSlugRunes.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetPublicEvent(ctx context.Context, slug string) (*domain.PublicEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	report := event.Capacity(1)
	return &domain.PublicEvent{
		Event:    event,
		Capacity: report,
		RSVPOpen: event.RequiresRSVP && !event.DeadlinePassed(s.now()) && (report.Available || report.WaitlistAvailable),
	}, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrEventHasReservations) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	stats, err := s.rsvpRepo.StatsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("rsvp stats: %w", err)
	}
	stats.EventID = event.ID
	stats.MaxCapacity = event.MaxCapacity
	stats.CurrentAttendees = event.CurrentAttendees
	stats.Remaining = event.Capacity(0).Remaining
	return stats, nil
}
