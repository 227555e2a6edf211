// Package rsvps manages attendance confirmations. Mutations are limited to
// events that have not started yet so past attendance stays fixed.
package rsvps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
	"github.com/rs/zerolog"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

var (
	ErrNotFound      = apperr.NotFound("RSVP not found")
	ErrAlreadyExists = apperr.Conflict("an RSVP already exists for this event")
	ErrEventPast     = apperr.PreconditionError{Message: "cannot RSVP to an event that has already taken place"}
	ErrCancelPast    = apperr.PreconditionError{Message: "cannot cancel attendance to an event that has already taken place"}
)

type RSVP struct {
	ID          int64
	UserID      int64
	EventID     int64
	Status      Status
	RespondedAt *time.Time
	CreatedAt   time.Time
}

type CreateParams struct {
	UserID      int64
	EventID     int64
	Status      Status
	RespondedAt time.Time
}

type Repository interface {
	// EventDate returns the event's date, holding a share lock on the row for
	// the rest of the transaction. Missing events yield events.ErrNotFound.
	EventDate(ctx context.Context, eventID int64) (time.Time, error)
	Get(ctx context.Context, userID, eventID int64) (*RSVP, error)
	// Create returns ErrAlreadyExists when the pair already has an RSVP.
	Create(ctx context.Context, params CreateParams) (*RSVP, error)
	Delete(ctx context.Context, id int64) error
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
		logger: logger.With().Str("component", "rsvps").Logger(),
	}
}

// Status returns the user's RSVP status for the event, or nil when none exists.
// It is a single read and runs outside a transaction.
func (s *Service) Status(ctx context.Context, userID, eventID int64) (*Status, error) {
	rsvp, err := s.repo.Get(ctx, userID, eventID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rsvp status: %w", err)
	}
	return &rsvp.Status, nil
}

// Create confirms attendance to a future event.
func (s *Service) Create(ctx context.Context, userID, eventID int64) (*RSVP, error) {
	var created *RSVP
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		date, err := repo.EventDate(ctx, eventID)
		if err != nil {
			return err
		}
		now := s.now()
		if date.Before(now) {
			return ErrEventPast
		}

		if _, err := repo.Get(ctx, userID, eventID); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		created, err = repo.Create(ctx, CreateParams{
			UserID:      userID,
			EventID:     eventID,
			Status:      StatusAccepted,
			RespondedAt: now,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create rsvp: %w", err)
	}
	s.logger.Info().Int64("user_id", userID).Int64("event_id", eventID).Msg("rsvp created")
	return created, nil
}

// Cancel withdraws attendance to a future event.
func (s *Service) Cancel(ctx context.Context, userID, eventID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		rsvp, err := repo.Get(ctx, userID, eventID)
		if err != nil {
			return err
		}
		date, err := repo.EventDate(ctx, eventID)
		if err != nil {
			return err
		}
		if date.Before(s.now()) {
			return ErrCancelPast
		}
		return repo.Delete(ctx, rsvp.ID)
	})
	if err != nil {
		return fmt.Errorf("cancel rsvp: %w", err)
	}
	s.logger.Info().Int64("user_id", userID).Int64("event_id", eventID).Msg("rsvp cancelled")
	return nil
}
