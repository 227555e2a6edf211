package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/notifications"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ notifications.Repository = (*NotificationRepository)(nil)

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) (items []notifications.Notification, err error) {
	defer observe("notifications.list_by_user", time.Now(), &err)

	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT n.id, n.user_id, n.event_id, e.title, n.old_date, n.new_date, n.created_at
  FROM notifications n
  JOIN events e ON e.id = n.event_id
 WHERE n.user_id = $1
 ORDER BY n.created_at DESC, n.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items = []notifications.Notification{}
	for rows.Next() {
		var n notifications.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.EventTitle, &n.OldDate, &n.NewDate, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}
