// Package reports builds read-only summaries over past events: per-event
// RSVP and rating statistics, and attendee rosters.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type Stat struct {
	EventID       int64
	EventTitle    string
	TotalRSVPs    int
	AcceptedCount int
	AverageRating float64
}

type Attendee struct {
	UserID   int64
	FullName string
	Username string
}

type HistoryEntry struct {
	EventID    int64
	EventTitle string
	EventDate  time.Time
	Attendees  []Attendee
}

// HistoryRow is one event joined with at most one accepted attendee. Events
// without attendees yield a single row with a nil UserID.
type HistoryRow struct {
	EventID    int64
	EventTitle string
	EventDate  time.Time
	UserID     *int64
	FirstName  string
	LastName   string
	Username   string
}

type Repository interface {
	// Stats returns aggregates for events dated before the cutoff.
	Stats(ctx context.Context, before time.Time) ([]Stat, error)
	// HistoryRows returns rows for events dated before the cutoff, newest
	// event first, rows of one event adjacent.
	HistoryRows(ctx context.Context, before time.Time) ([]HistoryRow, error)
}

type Service struct {
	repo   Repository
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("component", "reports").Logger(),
	}
}

func (s *Service) Stats(ctx context.Context) ([]Stat, error) {
	stats, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	if stats == nil {
		stats = []Stat{}
	}
	return stats, nil
}

func (s *Service) History(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := s.repo.HistoryRows(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("event history: %w", err)
	}
	return groupHistory(rows), nil
}

func groupHistory(rows []HistoryRow) []HistoryEntry {
	entries := []HistoryEntry{}
	for _, row := range rows {
		if n := len(entries); n == 0 || entries[n-1].EventID != row.EventID {
			entries = append(entries, HistoryEntry{
				EventID:    row.EventID,
				EventTitle: row.EventTitle,
				EventDate:  row.EventDate,
				Attendees:  []Attendee{},
			})
		}
		if row.UserID == nil {
			continue
		}
		last := &entries[len(entries)-1]
		last.Attendees = append(last.Attendees, Attendee{
			UserID:   *row.UserID,
			FullName: row.FirstName + " " + row.LastName,
			Username: row.Username,
		})
	}
	return entries
}
