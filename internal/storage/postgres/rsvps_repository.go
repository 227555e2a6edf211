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

type RSVPRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ rsvps.Repository = (*RSVPRepository)(nil)

const rsvpColumns = `id, user_id, event_id, status, responded_at, created_at`

func scanRSVP(row pgx.Row) (*rsvps.RSVP, error) {
	var (
		rsvp   rsvps.RSVP
		status string
	)
	if err := row.Scan(&rsvp.ID, &rsvp.UserID, &rsvp.EventID, &status, &rsvp.RespondedAt, &rsvp.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rsvps.ErrNotFound
		}
		return nil, err
	}
	rsvp.Status = rsvps.Status(status)
	return &rsvp, nil
}

func (r *RSVPRepository) EventDate(ctx context.Context, eventID int64) (date time.Time, err error) {
	defer observe("rsvps.event_date", time.Now(), &err)

	err = pick(r.pool, r.tx).QueryRow(ctx, `SELECT event_date FROM events WHERE id = $1 FOR SHARE`, eventID).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, events.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load event date: %w", err)
	}
	return date, nil
}

func (r *RSVPRepository) Get(ctx context.Context, userID, eventID int64) (rsvp *rsvps.RSVP, err error) {
	defer observe("rsvps.get", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `SELECT `+rsvpColumns+` FROM rsvps WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	return scanRSVP(row)
}

func (r *RSVPRepository) Create(ctx context.Context, params rsvps.CreateParams) (rsvp *rsvps.RSVP, err error) {
	defer observe("rsvps.create", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO rsvps (user_id, event_id, status, responded_at)
VALUES ($1, $2, $3, $4)
RETURNING `+rsvpColumns,
		params.UserID, params.EventID, string(params.Status), params.RespondedAt,
	)
	rsvp, err = scanRSVP(row)
	if err != nil {
		if isUniqueViolation(err, "rsvps_user_id_event_id_key") {
			return nil, rsvps.ErrAlreadyExists
		}
		if constraint, ok := foreignKeyViolation(err); ok {
			switch constraint {
			case "rsvps_event_id_fkey":
				return nil, events.ErrNotFound
			case "rsvps_user_id_fkey":
				return nil, users.ErrNotFound
			}
		}
		return nil, fmt.Errorf("insert rsvp: %w", err)
	}
	return rsvp, nil
}

func (r *RSVPRepository) Delete(ctx context.Context, id int64) (err error) {
	defer observe("rsvps.delete", time.Now(), &err)

	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM rsvps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rsvp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rsvps.ErrNotFound
	}
	return nil
}

func (r *RSVPRepository) WithTx(ctx context.Context, fn func(ctx context.Context, repo rsvps.Repository) error) error {
	return inTx(ctx, r.pool, r.tx, func(tx pgx.Tx) error {
		return fn(ctx, &RSVPRepository{pool: r.pool, tx: tx})
	})
}
