// Package comments handles ratings and comments on events. Only confirmed
// attendees may comment, and only once the event has taken place.
package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
	"github.com/Togather-Foundation/eventos/internal/sanitize"
	"github.com/Togather-Foundation/eventos/internal/validation"
	"github.com/rs/zerolog"
)

var (
	ErrEventNotPast = apperr.PreconditionError{Message: "you can only comment on an event that has already taken place"}
	ErrNotAttendee  = apperr.PreconditionError{Message: "you cannot comment without having confirmed attendance"}
)

type Comment struct {
	ID        int64
	UserID    int64
	EventID   int64
	Username  string
	Rating    int
	Content   string
	CreatedAt time.Time
}

// Input is the client payload for a new comment. Rating is a pointer so a
// missing value is distinguishable from zero.
type Input struct {
	Rating  *int   `json:"rating" validate:"required,min=1,max=5"`
	Content string `json:"content" validate:"required"`
}

type CreateParams struct {
	UserID  int64
	EventID int64
	Rating  int
	Content string
}

type Repository interface {
	// EventDate returns the event's date or events.ErrNotFound.
	EventDate(ctx context.Context, eventID int64) (time.Time, error)
	HasAcceptedRSVP(ctx context.Context, userID, eventID int64) (bool, error)
	Create(ctx context.Context, params CreateParams) (*Comment, error)
	// ListByEvent returns comments in insertion order with the author's username.
	ListByEvent(ctx context.Context, eventID int64) ([]Comment, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
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
		logger: logger.With().Str("component", "comments").Logger(),
	}
}

func (s *Service) Add(ctx context.Context, userID, eventID int64, in Input) (*Comment, error) {
	in.Content = sanitize.Text(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var created *Comment
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		date, err := repo.EventDate(ctx, eventID)
		if err != nil {
			return err
		}
		if !date.Before(s.now()) {
			return ErrEventNotPast
		}

		attended, err := repo.HasAcceptedRSVP(ctx, userID, eventID)
		if err != nil {
			return err
		}
		if !attended {
			return ErrNotAttendee
		}

		created, err = repo.Create(ctx, CreateParams{
			UserID:  userID,
			EventID: eventID,
			Rating:  *in.Rating,
			Content: in.Content,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	s.logger.Info().Int64("user_id", userID).Int64("event_id", eventID).Int("rating", created.Rating).Msg("comment added")
	return created, nil
}

func (s *Service) List(ctx context.Context, eventID int64) ([]Comment, error) {
	items, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if items == nil {
		items = []Comment{}
	}
	return items, nil
}
