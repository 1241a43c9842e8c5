package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"congregationsite/internal/domain"
)

const rsvpColumns = `id, event_id, confirmation_code, name, email, phone, number_of_guests,
	dietary_restrictions, special_needs, notes, status, idempotency_key, created_at, updated_at`

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

func scanRSVP(row rowScanner) (*domain.RSVP, error) {
	r := &domain.RSVP{}
	var phone, dietary, special, notes, key sql.NullString
	var status string
	err := row.Scan(
		&r.ID, &r.EventID, &r.ConfirmationCode, &r.Name, &r.Email, &phone, &r.NumberOfGuests,
		&dietary, &special, &notes, &status, &key, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Phone = stringPtr(phone)
	r.DietaryRestrictions = stringPtr(dietary)
	r.SpecialNeeds = stringPtr(special)
	r.Notes = stringPtr(notes)
	r.IdempotencyKey = stringPtr(key)
	r.Status = domain.RSVPStatus(status)
	return r, nil
}

// WithinEventTx locks the event row with SELECT ... FOR UPDATE so that concurrent
// admissions for the same event run one at a time. Other events are unaffected.
func (r *rsvpRepository) WithinEventTx(ctx context.Context, eventID string, fn func(tx domain.EventTx) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	event, err := scanEvent(tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	if err = fn(&eventTx{tx: tx, event: event}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *rsvpRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE confirmation_code = $1`
	rsvp, err := scanRSVP(r.DB.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID string, status *domain.RSVPStatus, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	var statusArg sql.NullString
	if status != nil {
		statusArg = sql.NullString{String: string(*status), Valid: true}
	}

	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND ($2::text IS NULL OR status = $2)`,
		eventID, statusArg,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count rsvps: %w", err)
	}

	query := `SELECT ` + rsvpColumns + ` FROM rsvps
		WHERE event_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at ASC, id ASC
		LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.DB.QueryContext(ctx, query, eventID, statusArg, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	rsvps := make([]*domain.RSVP, 0)
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, 0, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return rsvps, total, nil
}

func (r *rsvpRepository) StatsByEventID(ctx context.Context, eventID string) (*domain.EventStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COALESCE(SUM(1 + number_of_guests) FILTER (WHERE status = 'confirmed'), 0),
			COUNT(*) FILTER (WHERE status = 'waitlisted'),
			COALESCE(SUM(1 + number_of_guests) FILTER (WHERE status = 'waitlisted'), 0),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM rsvps
		WHERE event_id = $1
	`
	st := &domain.EventStats{EventID: eventID}
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(
		&st.ConfirmedCount, &st.ConfirmedSeats,
		&st.WaitlistedCount, &st.WaitlistedSeats,
		&st.CancelledCount,
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// eventTx is the domain.EventTx handed to WithinEventTx callbacks.
type eventTx struct {
	tx    *sql.Tx
	event *domain.Event
}

func (t *eventTx) Event() *domain.Event { return t.event }

func (t *eventTx) FindByIdempotencyKey(ctx context.Context, key string) (*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE event_id = $1 AND idempotency_key = $2`
	rsvp, err := scanRSVP(t.tx.QueryRowContext(ctx, query, t.event.ID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (t *eventTx) FindByConfirmationCode(ctx context.Context, code string) (*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE event_id = $1 AND confirmation_code = $2 FOR UPDATE`
	rsvp, err := scanRSVP(t.tx.QueryRowContext(ctx, query, t.event.ID, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (t *eventTx) Insert(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO rsvps (event_id, confirmation_code, name, email, phone, number_of_guests,
			dietary_restrictions, special_needs, notes, status, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (confirmation_code) DO NOTHING
		RETURNING id
	`
	err := t.tx.QueryRowContext(ctx, query,
		t.event.ID, rsvp.ConfirmationCode, rsvp.Name, rsvp.Email, nullString(rsvp.Phone), rsvp.NumberOfGuests,
		nullString(rsvp.DietaryRestrictions), nullString(rsvp.SpecialNeeds), nullString(rsvp.Notes),
		string(rsvp.Status), nullString(rsvp.IdempotencyKey), rsvp.CreatedAt, rsvp.UpdatedAt,
	).Scan(&rsvp.ID)
	if err != nil {
		// DO NOTHING returns no row when the code is already taken.
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrDuplicateConfirmationCode
		}
		return err
	}
	return nil
}

func (t *eventTx) SetStatus(ctx context.Context, rsvpID string, status domain.RSVPStatus) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE rsvps SET status = $1, updated_at = NOW() WHERE id = $2 AND event_id = $3`,
		string(status), rsvpID, t.event.ID,
	)
	if err != nil {
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

func (t *eventTx) AdjustAttendees(ctx context.Context, delta int) error {
	if delta <= 0 {
		_, err := t.tx.ExecContext(ctx,
			`UPDATE events SET current_attendees = GREATEST(0, current_attendees + $1), updated_at = NOW() WHERE id = $2`,
			delta, t.event.ID,
		)
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE events SET current_attendees = current_attendees + $1, updated_at = NOW()
		WHERE id = $2 AND (max_capacity IS NULL OR current_attendees + $1 <= max_capacity)`,
		delta, t.event.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCapacityExceeded
	}
	return nil
}
