package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/rsvps"
	"github.com/Togather-Foundation/eventos/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `e.id, e.creator_id, e.title, e.description, e.event_date, e.location, e.license_code, e.created_at, e.updated_at`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	if err := row.Scan(&e.ID, &e.CreatorID, &e.Title, &e.Description, &e.EventDate, &e.Location, &e.LicenseCode, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()

	items := []events.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

// mapEventWriteError translates constraint violations raised by INSERT/UPDATE.
func mapEventWriteError(err error) error {
	if constraint, ok := foreignKeyViolation(err); ok {
		switch constraint {
		case "events_license_code_fkey":
			return events.ErrUnknownLicense
		case "events_creator_id_fkey":
			return users.ErrNotFound
		}
	}
	return err
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (event *events.Event, err error) {
	defer observe("events.create", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO events AS e (creator_id, title, description, event_date, location, license_code)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+eventColumns,
		params.CreatorID, params.Title, params.Description, params.EventDate, params.Location, params.LicenseCode,
	)
	event, err = scanEvent(row)
	if err != nil {
		if mapped := mapEventWriteError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Get(ctx context.Context, id int64) (event *events.Event, err error) {
	defer observe("events.get", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
	return scanEvent(row)
}

func (r *EventRepository) GetForUpdate(ctx context.Context, id int64) (event *events.Event, err error) {
	defer observe("events.get_for_update", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1 FOR UPDATE`, id)
	return scanEvent(row)
}

func (r *EventRepository) List(ctx context.Context) (items []events.Event, err error) {
	defer observe("events.list", time.Now(), &err)

	rows, err := pick(r.pool, r.tx).Query(ctx, `SELECT `+eventColumns+` FROM events e ORDER BY e.event_date ASC, e.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) ListAttended(ctx context.Context, userID int64, before time.Time) (items []events.Event, err error) {
	defer observe("events.list_attended", time.Now(), &err)

	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
  JOIN rsvps r ON r.event_id = e.id
 WHERE r.user_id = $1
   AND r.status = $2
   AND e.event_date < $3
 ORDER BY e.event_date ASC, e.id ASC`,
		userID, string(rsvps.StatusAccepted), before,
	)
	if err != nil {
		return nil, fmt.Errorf("list attended events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) ListCreated(ctx context.Context, creatorID int64) (items []events.Event, err error) {
	defer observe("events.list_created", time.Now(), &err)

	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.creator_id = $1
 ORDER BY e.event_date ASC, e.id ASC`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list created events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) Update(ctx context.Context, params events.UpdateParams) (event *events.Event, err error) {
	defer observe("events.update", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `
UPDATE events AS e
   SET title = $2,
       description = $3,
       event_date = $4,
       location = $5,
       license_code = $6,
       updated_at = now()
 WHERE e.id = $1
RETURNING `+eventColumns,
		params.ID, params.Title, params.Description, params.EventDate, params.Location, params.LicenseCode,
	)
	event, err = scanEvent(row)
	if err != nil {
		if mapped := mapEventWriteError(err); mapped != err {
			return nil, mapped
		}
		if errors.Is(err, events.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) (err error) {
	defer observe("events.delete", time.Now(), &err)

	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) NotifyAttendees(ctx context.Context, eventID int64, oldDate, newDate time.Time) (count int, err error) {
	defer observe("events.notify_attendees", time.Now(), &err)

	tag, err := pick(r.pool, r.tx).Exec(ctx, `
INSERT INTO notifications (user_id, event_id, old_date, new_date)
SELECT r.user_id, r.event_id, $2::timestamp, $3::timestamp
  FROM rsvps r
 WHERE r.event_id = $1
   AND r.status = $4`,
		eventID, oldDate, newDate, string(rsvps.StatusAccepted),
	)
	if err != nil {
		return 0, fmt.Errorf("insert notifications: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context, repo events.Repository) error) error {
	return inTx(ctx, r.pool, r.tx, func(tx pgx.Tx) error {
		return fn(ctx, &EventRepository{pool: r.pool, tx: tx})
	})
}
