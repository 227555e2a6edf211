// Package notifications exposes the reschedule notices written when an
// event's date changes.
package notifications

import (
	"context"
	"fmt"
	"time"
)

type Notification struct {
	ID         int64
	UserID     int64
	EventID    int64
	EventTitle string
	OldDate    time.Time
	NewDate    time.Time
	CreatedAt  time.Time
}

type Repository interface {
	// ListByUser returns the user's notifications newest first.
	ListByUser(ctx context.Context, userID int64) ([]Notification, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64) ([]Notification, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if items == nil {
		items = []Notification{}
	}
	return items, nil
}
