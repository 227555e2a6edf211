package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventos/internal/sanitize"
	"github.com/Togather-Foundation/eventos/internal/validation"
	"github.com/rs/zerolog"
)

// Input is the client payload for creating or replacing an event.
type Input struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description"`
	EventDate   string  `json:"event_date" validate:"required"`
	Location    *string `json:"location" validate:"omitempty,max=150"`
	LicenseCode string  `json:"license_code" validate:"required,max=20"`
}

// Listing pairs an event with whether it has already taken place.
type Listing struct {
	Event
	IsPast bool
}

type UpdateResult struct {
	Event    *Event
	Notified int
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
		logger: logger.With().Str("component", "events").Logger(),
	}
}

type normalized struct {
	title       string
	description *string
	date        time.Time
	location    *string
	license     string
}

func normalize(in Input) (normalized, error) {
	in.Title = sanitize.Text(in.Title)
	in.Location = sanitize.OptionalText(in.Location)
	in.Description = sanitize.OptionalHTML(in.Description)
	in.EventDate = strings.TrimSpace(in.EventDate)
	in.LicenseCode = strings.TrimSpace(in.LicenseCode)
	if err := validation.Struct(in); err != nil {
		return normalized{}, err
	}

	date, err := ParseDate(in.EventDate)
	if err != nil {
		return normalized{}, err
	}
	return normalized{
		title:       in.Title,
		description: in.Description,
		date:        date,
		location:    in.Location,
		license:     in.LicenseCode,
	}, nil
}

func (s *Service) Create(ctx context.Context, creatorID int64, in Input) (*Event, error) {
	n, err := normalize(in)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Create(ctx, CreateParams{
		CreatorID:   creatorID,
		Title:       n.title,
		Description: n.description,
		EventDate:   n.date,
		Location:    n.location,
		LicenseCode: n.license,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info().Int64("event_id", event.ID).Int64("creator_id", creatorID).Msg("event created")
	return event, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Listing, error) {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return Listing{}, fmt.Errorf("get event %d: %w", id, err)
	}
	return Listing{Event: *event, IsPast: event.IsPast(s.now())}, nil
}

// List returns every event ordered by date ascending.
func (s *Service) List(ctx context.Context) ([]Listing, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.annotate(items), nil
}

// Attended returns past events the user confirmed attendance to.
func (s *Service) Attended(ctx context.Context, userID int64) ([]Event, error) {
	items, err := s.repo.ListAttended(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list attended events: %w", err)
	}
	if items == nil {
		items = []Event{}
	}
	return items, nil
}

func (s *Service) Created(ctx context.Context, userID int64) ([]Listing, error) {
	items, err := s.repo.ListCreated(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list created events: %w", err)
	}
	return s.annotate(items), nil
}

// Update replaces the event's fields. Only the creator may do so. When the
// date moves, accepted attendees are notified in the same transaction.
func (s *Service) Update(ctx context.Context, userID, id int64, in Input) (UpdateResult, error) {
	n, err := normalize(in)
	if err != nil {
		return UpdateResult{}, err
	}

	var result UpdateResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.CreatorID != userID {
			return ErrNotCreator
		}

		updated, err := repo.Update(ctx, UpdateParams{
			ID:          id,
			Title:       n.title,
			Description: n.description,
			EventDate:   n.date,
			Location:    n.location,
			LicenseCode: n.license,
		})
		if err != nil {
			return err
		}
		result.Event = updated

		if !current.EventDate.Equal(updated.EventDate) {
			notified, err := repo.NotifyAttendees(ctx, id, current.EventDate, updated.EventDate)
			if err != nil {
				return fmt.Errorf("notify attendees: %w", err)
			}
			result.Notified = notified
		}
		return nil
	})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update event %d: %w", id, err)
	}

	s.logger.Info().Int64("event_id", id).Int("notified", result.Notified).Msg("event updated")
	return result, nil
}

// Delete removes the event and everything attached to it. Only the creator may
// do so. The deleted event is returned for auditing.
func (s *Service) Delete(ctx context.Context, userID, id int64) (*Event, error) {
	var deleted *Event
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.CreatorID != userID {
			return ErrNotCreator
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete event %d: %w", id, err)
	}
	s.logger.Info().Int64("event_id", id).Msg("event deleted")
	return deleted, nil
}

func (s *Service) annotate(items []Event) []Listing {
	now := s.now()
	out := make([]Listing, 0, len(items))
	for _, item := range items {
		out = append(out, Listing{Event: item, IsPast: item.IsPast(now)})
	}
	return out
}
