package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"congregationsite/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeStore is an in-memory EventRepository and RSVPRepository. WithinEventTx serialises
// callers with a mutex and only applies writes when fn returns nil, like a real transaction.
type fakeStore struct {
	mu         sync.Mutex
	events     map[string]*domain.Event
	rsvps      []*domain.RSVP
	takenCodes map[string]bool
	nextID     int

	insertErr error
	listErr   error
	createErr []error // consumed one per Create call
	deleteErr error
}

func newFakeStore(events ...*domain.Event) *fakeStore {
	f := &fakeStore{
		events:     make(map[string]*domain.Event),
		takenCodes: make(map[string]bool),
	}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeStore) event(id string) domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.events[id]
}

func (f *fakeStore) rsvpCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rsvps)
}

func (f *fakeStore) countStatus(status domain.RSVPStatus) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rsvps {
		if r.Status == status {
			n++
		}
	}
	return n
}

// EventRepository

func (f *fakeStore) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return err
		}
	}
	f.nextID++
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.events[e.ID] = e
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	out := make([]*domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	for _, r := range f.rsvps {
		if r.EventID == id {
			return domain.ErrEventHasReservations
		}
	}
	delete(f.events, id)
	return nil
}

// RSVPRepository

func (f *fakeStore) WithinEventTx(ctx context.Context, eventID string, fn func(tx domain.EventTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	snapshot := *ev
	tx := &fakeTx{store: f, event: &snapshot, committed: ev.CurrentAttendees, status: map[string]domain.RSVPStatus{}}
	if err := fn(tx); err != nil {
		return err
	}
	ev.CurrentAttendees = tx.committed + tx.delta
	f.rsvps = append(f.rsvps, tx.inserts...)
	for id, st := range tx.status {
		for _, r := range f.rsvps {
			if r.ID == id {
				r.Status = st
			}
		}
	}
	return nil
}

func (f *fakeStore) GetByConfirmationCode(ctx context.Context, code string) (*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rsvps {
		if r.ConfirmationCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) ListByEventID(ctx context.Context, eventID string, status *domain.RSVPStatus, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []*domain.RSVP
	for _, r := range f.rsvps {
		if r.EventID == eventID && (status == nil || r.Status == *status) {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) StatsByEventID(ctx context.Context, eventID string) (*domain.EventStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	st := &domain.EventStats{}
	for _, r := range f.rsvps {
		if r.EventID != eventID {
			continue
		}
		switch r.Status {
		case domain.RSVPStatusConfirmed:
			st.ConfirmedCount++
			st.ConfirmedSeats += r.PartySize()
		case domain.RSVPStatusWaitlisted:
			st.WaitlistedCount++
			st.WaitlistedSeats += r.PartySize()
		case domain.RSVPStatusCancelled:
			st.CancelledCount++
		}
	}
	return st, nil
}

type fakeTx struct {
	store     *fakeStore
	event     *domain.Event
	committed int
	delta     int
	inserts   []*domain.RSVP
	status    map[string]domain.RSVPStatus
}

func (t *fakeTx) Event() *domain.Event { return t.event }

func (t *fakeTx) all() []*domain.RSVP {
	return append(append([]*domain.RSVP{}, t.store.rsvps...), t.inserts...)
}

func (t *fakeTx) FindByIdempotencyKey(ctx context.Context, key string) (*domain.RSVP, error) {
	for _, r := range t.all() {
		if r.EventID == t.event.ID && r.IdempotencyKey != nil && *r.IdempotencyKey == key {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *fakeTx) FindByConfirmationCode(ctx context.Context, code string) (*domain.RSVP, error) {
	for _, r := range t.all() {
		if r.ConfirmationCode == code {
			cp := *r
			if st, ok := t.status[r.ID]; ok {
				cp.Status = st
			}
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *fakeTx) Insert(ctx context.Context, r *domain.RSVP) error {
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	if t.store.takenCodes[r.ConfirmationCode] {
		return domain.ErrDuplicateConfirmationCode
	}
	for _, existing := range t.all() {
		if existing.ConfirmationCode == r.ConfirmationCode {
			return domain.ErrDuplicateConfirmationCode
		}
	}
	t.store.nextID++
	r.ID = fmt.Sprintf("rsvp-%d", t.store.nextID)
	cp := *r
	t.inserts = append(t.inserts, &cp)
	return nil
}

func (t *fakeTx) SetStatus(ctx context.Context, id string, status domain.RSVPStatus) error {
	t.status[id] = status
	return nil
}

func (t *fakeTx) AdjustAttendees(ctx context.Context, delta int) error {
	next := t.committed + t.delta + delta
	if delta > 0 && t.event.MaxCapacity != nil && next > *t.event.MaxCapacity {
		return domain.ErrCapacityExceeded
	}
	if next < 0 {
		delta -= next
	}
	t.delta += delta
	return nil
}

// fakeEmailService records sends and can be told to fail.
type fakeEmailService struct {
	mu            sync.Mutex
	err           error
	confirmations []*domain.RSVPEmailData
	cancellations []*domain.RSVPEmailData
}

func (f *fakeEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, data)
	return f.err
}

func (f *fakeEmailService) SendRSVPCancellation(ctx context.Context, data *domain.RSVPEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancellations = append(f.cancellations, data)
	return f.err
}

var errSMTPDown = errors.New("provider unreachable")

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
