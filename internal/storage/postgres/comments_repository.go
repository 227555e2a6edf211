package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/comments"
	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/rsvps"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ comments.Repository = (*CommentRepository)(nil)

func scanComment(row pgx.Row) (*comments.Comment, error) {
	var c comments.Comment
	if err := row.Scan(&c.ID, &c.UserID, &c.EventID, &c.Username, &c.Rating, &c.Content, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) EventDate(ctx context.Context, eventID int64) (date time.Time, err error) {
	defer observe("comments.event_date", time.Now(), &err)

	err = pick(r.pool, r.tx).QueryRow(ctx, `SELECT event_date FROM events WHERE id = $1`, eventID).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, events.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load event date: %w", err)
	}
	return date, nil
}

func (r *CommentRepository) HasAcceptedRSVP(ctx context.Context, userID, eventID int64) (ok bool, err error) {
	defer observe("comments.has_accepted_rsvp", time.Now(), &err)

	err = pick(r.pool, r.tx).QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM rsvps WHERE user_id = $1 AND event_id = $2 AND status = $3
)`, userID, eventID, string(rsvps.StatusAccepted)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check attendance: %w", err)
	}
	return ok, nil
}

func (r *CommentRepository) Create(ctx context.Context, params comments.CreateParams) (comment *comments.Comment, err error) {
	defer observe("comments.create", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `
WITH inserted AS (
    INSERT INTO comments (user_id, event_id, rating, content)
    VALUES ($1, $2, $3, $4)
    RETURNING id, user_id, event_id, rating, content, created_at
)
SELECT i.id, i.user_id, i.event_id, u.username, i.rating, i.content, i.created_at
  FROM inserted i
  JOIN users u ON u.id = i.user_id`,
		params.UserID, params.EventID, params.Rating, params.Content,
	)
	comment, err = scanComment(row)
	if err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

func (r *CommentRepository) ListByEvent(ctx context.Context, eventID int64) (items []comments.Comment, err error) {
	defer observe("comments.list_by_event", time.Now(), &err)

	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT c.id, c.user_id, c.event_id, u.username, c.rating, c.content, c.created_at
  FROM comments c
  JOIN users u ON u.id = c.user_id
 WHERE c.event_id = $1
 ORDER BY c.id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items = []comments.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return items, nil
}

func (r *CommentRepository) WithTx(ctx context.Context, fn func(ctx context.Context, repo comments.Repository) error) error {
	return inTx(ctx, r.pool, r.tx, func(tx pgx.Tx) error {
		return fn(ctx, &CommentRepository{pool: r.pool, tx: tx})
	})
}
