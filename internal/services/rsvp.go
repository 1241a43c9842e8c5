package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"congregationsite/internal/domain"
)

const (
	maxCodeAttempts = 5

	maxNameLen      = 200
	maxEmailLen     = 254
	maxPhoneLen     = 50
	maxFreeTextLen  = 1000
	defaultMaxGuest = 10
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RSVPOptions tunes the reservation service.
type RSVPOptions struct {
	MaxGuests      int
	ContextTimeout time.Duration
	NotifyTimeout  time.Duration
}

type rsvpService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	maxGuests      int
	contextTimeout time.Duration
	notifyTimeout  time.Duration
	now            func() time.Time
	newCode        func() (string, error)
}

// NewRSVPService creates an RSVPService. emailService may be nil, in which case
// notifications are reported as skipped.
func NewRSVPService(
	eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	opts RSVPOptions,
) domain.RSVPService {
	if opts.MaxGuests < 0 {
		opts.MaxGuests = defaultMaxGuest
	}
	if opts.ContextTimeout <= 0 {
		opts.ContextTimeout = 5 * time.Second
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	return &rsvpService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		emailService:   emailService,
		logger:         logger,
		maxGuests:      opts.MaxGuests,
		contextTimeout: opts.ContextTimeout,
		notifyTimeout:  opts.NotifyTimeout,
		now:            time.Now,
		newCode:        generateConfirmationCode,
	}
}

func (s *rsvpService) Submit(ctx context.Context, eventID string, in domain.RSVPInput, idempotencyKey string) (*domain.RSVPResult, bool, error) {
	in, key, err := s.validateSubmission(in, idempotencyKey)
	if err != nil {
		return nil, false, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		rsvp    *domain.RSVP
		event   *domain.Event
		created bool
	)
	err = s.rsvpRepo.WithinEventTx(txCtx, eventID, func(tx domain.EventTx) error {
		ev := tx.Event()
		if !ev.RequiresRSVP {
			return domain.ErrRSVPNotRequired
		}
		now := s.now()
		if ev.DeadlinePassed(now) {
			return domain.ErrDeadlinePassed
		}

		if key != nil {
			existing, err := tx.FindByIdempotencyKey(txCtx, *key)
			if err == nil {
				rsvp, event = existing, ev
				return nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("find by idempotency key: %w", err)
			}
		}

		r := newRSVP(eventID, in, key, now)
		report := ev.Capacity(r.PartySize())
		switch {
		case report.Available:
			r.Status = domain.RSVPStatusConfirmed
		case report.WaitlistAvailable:
			r.Status = domain.RSVPStatusWaitlisted
		default:
			return domain.ErrEventFull
		}

		if err := s.insertWithCode(txCtx, tx, r); err != nil {
			return err
		}
		if r.Status == domain.RSVPStatusConfirmed {
			if err := tx.AdjustAttendees(txCtx, r.PartySize()); err != nil {
				return fmt.Errorf("increment attendees: %w", err)
			}
			ev.CurrentAttendees += r.PartySize()
		}
		rsvp, event, created = r, ev, true
		return nil
	})
	if err != nil {
		return nil, false, admissionError("submit rsvp", err)
	}

	result := &domain.RSVPResult{
		Reservation:  rsvp,
		Message:      statusMessage(rsvp),
		Notification: domain.NotificationSkipped,
	}
	if !created {
		return result, false, nil
	}
	s.logger.InfoContext(ctx, "rsvp admitted",
		"event_id", eventID, "rsvp_id", rsvp.ID, "status", rsvp.Status, "party_size", rsvp.PartySize())

	result.Notification = s.notify(ctx, event, rsvp, s.sendConfirmation)
	return result, true, nil
}

// insertWithCode assigns a fresh confirmation code and inserts r, retrying on collisions.
func (s *rsvpService) insertWithCode(ctx context.Context, tx domain.EventTx, r *domain.RSVP) error {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return fmt.Errorf("generate confirmation code: %w", err)
		}
		r.ConfirmationCode = code
		err = tx.Insert(ctx, r)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateConfirmationCode) {
			return fmt.Errorf("insert rsvp: %w", err)
		}
		s.logger.WarnContext(ctx, "confirmation code collision", "attempt", attempt)
	}
	return domain.ErrConfirmationCodeExhausted
}

func (s *rsvpService) GetByConfirmationCode(ctx context.Context, code string) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code = normalizeConfirmationCode(code)
	if !validConfirmationCode(code) {
		return nil, domain.ErrNotFound
	}
	rsvp, err := s.rsvpRepo.GetByConfirmationCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) Cancel(ctx context.Context, code, email string) (*domain.RSVP, error) {
	existing, err := s.GetByConfirmationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	// The email acts as a second factor; a mismatch looks the same as an unknown code.
	if !strings.EqualFold(existing.Email, strings.TrimSpace(email)) {
		return nil, domain.ErrNotFound
	}

	txCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		cancelled *domain.RSVP
		event     *domain.Event
	)
	err = s.rsvpRepo.WithinEventTx(txCtx, existing.EventID, func(tx domain.EventTx) error {
		r, err := tx.FindByConfirmationCode(txCtx, existing.ConfirmationCode)
		if err != nil {
			return fmt.Errorf("reload rsvp: %w", err)
		}
		if r.Status == domain.RSVPStatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		wasConfirmed := r.Status == domain.RSVPStatusConfirmed
		if err := tx.SetStatus(txCtx, r.ID, domain.RSVPStatusCancelled); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		if wasConfirmed {
			if err := tx.AdjustAttendees(txCtx, -r.PartySize()); err != nil {
				return fmt.Errorf("release attendees: %w", err)
			}
		}
		r.Status = domain.RSVPStatusCancelled
		r.UpdatedAt = s.now()
		cancelled, event = r, tx.Event()
		return nil
	})
	if err != nil {
		return nil, admissionError("cancel rsvp", err)
	}
	s.logger.InfoContext(ctx, "rsvp cancelled", "event_id", cancelled.EventID, "rsvp_id", cancelled.ID)

	s.notify(ctx, event, cancelled, s.sendCancellation)
	return cancelled, nil
}

// Promote moves a waitlisted reservation to confirmed when capacity allows.
// Promotion is a manual admin action; cancellations never promote automatically.
func (s *rsvpService) Promote(ctx context.Context, code string) (*domain.RSVPResult, error) {
	existing, err := s.GetByConfirmationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		promoted *domain.RSVP
		event    *domain.Event
	)
	err = s.rsvpRepo.WithinEventTx(txCtx, existing.EventID, func(tx domain.EventTx) error {
		r, err := tx.FindByConfirmationCode(txCtx, existing.ConfirmationCode)
		if err != nil {
			return fmt.Errorf("reload rsvp: %w", err)
		}
		if r.Status != domain.RSVPStatusWaitlisted {
			return domain.ErrInvalidStatus
		}
		ev := tx.Event()
		if !ev.Capacity(r.PartySize()).Available {
			return domain.ErrEventFull
		}
		if err := tx.AdjustAttendees(txCtx, r.PartySize()); err != nil {
			return fmt.Errorf("increment attendees: %w", err)
		}
		if err := tx.SetStatus(txCtx, r.ID, domain.RSVPStatusConfirmed); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		ev.CurrentAttendees += r.PartySize()
		r.Status = domain.RSVPStatusConfirmed
		r.UpdatedAt = s.now()
		promoted, event = r, ev
		return nil
	})
	if err != nil {
		return nil, admissionError("promote rsvp", err)
	}
	s.logger.InfoContext(ctx, "rsvp promoted", "event_id", promoted.EventID, "rsvp_id", promoted.ID)

	return &domain.RSVPResult{
		Reservation:  promoted,
		Message:      statusMessage(promoted),
		Notification: s.notify(ctx, event, promoted, s.sendConfirmation),
	}, nil
}

func (s *rsvpService) ListByEvent(ctx context.Context, eventID string, status *domain.RSVPStatus, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != nil && !status.Valid() {
		return nil, 0, &domain.ValidationError{Fields: []string{"status must be confirmed, waitlisted or cancelled"}}
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	rsvps, total, err := s.rsvpRepo.ListByEventID(ctx, eventID, status, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list rsvps: %w", err)
	}
	return rsvps, total, nil
}

type sendFunc func(ctx context.Context, data *domain.RSVPEmailData) error

// notify runs the best-effort email stage. It never fails the caller: the reservation is
// already committed. The send is bounded by notifyTimeout and detached from request cancellation.
func (s *rsvpService) notify(ctx context.Context, event *domain.Event, rsvp *domain.RSVP, send sendFunc) domain.NotificationOutcome {
	if s.emailService == nil {
		return domain.NotificationSkipped
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := send(ctx, emailData(event, rsvp)); err != nil {
		s.logger.WarnContext(ctx, "rsvp notification failed",
			"rsvp_id", rsvp.ID, "status", rsvp.Status, "err", err)
		return domain.NotificationFailed
	}
	return domain.NotificationSent
}

func (s *rsvpService) sendConfirmation(ctx context.Context, data *domain.RSVPEmailData) error {
	return s.emailService.SendRSVPConfirmation(ctx, data)
}

func (s *rsvpService) sendCancellation(ctx context.Context, data *domain.RSVPEmailData) error {
	return s.emailService.SendRSVPCancellation(ctx, data)
}

func (s *rsvpService) validateSubmission(in domain.RSVPInput, idempotencyKey string) (domain.RSVPInput, *string, error) {
	var errs []string

	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		errs = append(errs, "name is required")
	case utf8.RuneCountInString(in.Name) > maxNameLen:
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", maxNameLen))
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case in.Email == "":
		errs = append(errs, "email is required")
	case len(in.Email) > maxEmailLen || !emailRegexp.MatchString(in.Email):
		errs = append(errs, "email is invalid")
	}

	if in.NumberOfGuests < 0 {
		errs = append(errs, "number_of_guests must not be negative")
	} else if in.NumberOfGuests > s.maxGuests {
		errs = append(errs, fmt.Sprintf("number_of_guests must be at most %d", s.maxGuests))
	}

	var msg string
	if in.Phone, msg = optionalText("phone", in.Phone, maxPhoneLen); msg != "" {
		errs = append(errs, msg)
	}
	if in.DietaryRestrictions, msg = optionalText("dietary_restrictions", in.DietaryRestrictions, maxFreeTextLen); msg != "" {
		errs = append(errs, msg)
	}
	if in.SpecialNeeds, msg = optionalText("special_needs", in.SpecialNeeds, maxFreeTextLen); msg != "" {
		errs = append(errs, msg)
	}
	if in.Notes, msg = optionalText("notes", in.Notes, maxFreeTextLen); msg != "" {
		errs = append(errs, msg)
	}

	var key *string
	if k := strings.TrimSpace(idempotencyKey); k != "" {
		parsed, err := uuid.Parse(k)
		if err != nil {
			errs = append(errs, "idempotency key must be a UUID")
		} else {
			canonical := parsed.String()
			key = &canonical
		}
	}

	if len(errs) > 0 {
		return in, nil, &domain.ValidationError{Fields: errs}
	}
	return in, key, nil
}

// optionalText trims v, turns blank into nil and enforces a rune limit.
func optionalText(field string, v *string, limit int) (*string, string) {
	if v == nil {
		return nil, ""
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil, ""
	}
	if utf8.RuneCountInString(trimmed) > limit {
		return nil, fmt.Sprintf("%s must be at most %d characters", field, limit)
	}
	return &trimmed, ""
}

func newRSVP(eventID string, in domain.RSVPInput, key *string, now time.Time) *domain.RSVP {
	return &domain.RSVP{
		EventID:             eventID,
		Name:                in.Name,
		Email:               in.Email,
		Phone:               in.Phone,
		NumberOfGuests:      in.NumberOfGuests,
		DietaryRestrictions: in.DietaryRestrictions,
		SpecialNeeds:        in.SpecialNeeds,
		Notes:               in.Notes,
		IdempotencyKey:      key,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func statusMessage(r *domain.RSVP) string {
	switch r.Status {
	case domain.RSVPStatusConfirmed:
		return fmt.Sprintf("Your RSVP is confirmed. Your confirmation code is %s.", r.ConfirmationCode)
	case domain.RSVPStatusWaitlisted:
		return fmt.Sprintf("The event is at capacity. You have been added to the waitlist. Your confirmation code is %s.", r.ConfirmationCode)
	default:
		return "Your RSVP has been cancelled."
	}
}

func emailData(event *domain.Event, r *domain.RSVP) *domain.RSVPEmailData {
	data := &domain.RSVPEmailData{
		Email:            r.Email,
		Name:             r.Name,
		ConfirmationCode: r.ConfirmationCode,
		Status:           r.Status,
		PartySize:        r.PartySize(),
	}
	if event != nil {
		data.EventTitle = event.Title
		data.EventStartsAt = event.StartsAt
		if event.Location != nil {
			data.EventLocation = *event.Location
		}
	}
	return data
}

// admissionError passes domain sentinels through unchanged and wraps everything else.
func admissionError(op string, err error) error {
	for _, sentinel := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrRSVPNotRequired,
		domain.ErrDeadlinePassed,
		domain.ErrEventFull,
		domain.ErrAlreadyCancelled,
		domain.ErrInvalidStatus,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
