package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/reports"
	"github.com/Togather-Foundation/eventos/internal/domain/rsvps"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ reports.Repository = (*ReportRepository)(nil)

func (r *ReportRepository) Stats(ctx context.Context, before time.Time) (items []reports.Stat, err error) {
	defer observe("reports.stats", time.Now(), &err)

	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT s.event_id,
       s.event_title,
       COALESCE(s.total_rsvps, 0)::int,
       COALESCE(s.accepted_count, 0)::int,
       COALESCE(s.average_rating, 0)::float8
  FROM event_stats s
  JOIN events e ON e.id = s.event_id
 WHERE e.event_date < $1
 ORDER BY e.event_date ASC, e.id ASC`, before)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	items = []reports.Stat{}
	for rows.Next() {
		var s reports.Stat
		if err := rows.Scan(&s.EventID, &s.EventTitle, &s.TotalRSVPs, &s.AcceptedCount, &s.AverageRating); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return items, nil
}

func (r *ReportRepository) HistoryRows(ctx context.Context, before time.Time) (items []reports.HistoryRow, err error) {
	defer observe("reports.history", time.Now(), &err)

	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT e.id, e.title, e.event_date, u.id, u.first_name, u.last_name, u.username
  FROM events e
  LEFT JOIN rsvps r ON r.event_id = e.id AND r.status = $2
  LEFT JOIN users u ON u.id = r.user_id
 WHERE e.event_date < $1
 ORDER BY e.event_date DESC, e.id DESC, r.id ASC`, before, string(rsvps.StatusAccepted))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row                           reports.HistoryRow
			firstName, lastName, username *string
		)
		if err := rows.Scan(&row.EventID, &row.EventTitle, &row.EventDate, &row.UserID, &firstName, &lastName, &username); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		row.FirstName = derefString(firstName)
		row.LastName = derefString(lastName)
		row.Username = derefString(username)
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return items, nil
}
