package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"congregationsite/internal/domain"
)

const eventColumns = `id, slug, title, description, location, starts_at, ends_at, rsvp_deadline,
	max_capacity, current_attendees, requires_rsvp, waitlist_enabled, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var desc, loc sql.NullString
	var endsAt, deadline sql.NullTime
	var maxCap sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Slug, &e.Title, &desc, &loc, &e.StartsAt, &endsAt, &deadline,
		&maxCap, &e.CurrentAttendees, &e.RequiresRSVP, &e.WaitlistEnabled, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Description = stringPtr(desc)
	e.Location = stringPtr(loc)
	e.EndsAt = timePtr(endsAt)
	e.RSVPDeadline = timePtr(deadline)
	e.MaxCapacity = intPtr(maxCap)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (slug, title, description, location, starts_at, ends_at, rsvp_deadline,
			max_capacity, current_attendees, requires_rsvp, waitlist_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Slug, e.Title, nullString(e.Description), nullString(e.Location), e.StartsAt,
		nullTime(e.EndsAt), nullTime(e.RSVPDeadline), nullInt(e.MaxCapacity), e.CurrentAttendees,
		e.RequiresRSVP, e.WaitlistEnabled, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events ORDER BY starts_at ASC, id ASC LIMIT NULLIF($1, 0) OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return domain.ErrEventHasReservations
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
