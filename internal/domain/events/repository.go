package events

import (
	"context"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
)

var (
	ErrNotFound       = apperr.NotFound("event not found")
	ErrNotCreator     = apperr.Forbidden("only the event creator can modify this event")
	ErrUnknownLicense = apperr.ValidationError{Field: "license_code", Message: "unknown license code"}
	ErrInvalidDate    = apperr.ValidationError{Field: "event_date", Message: "must be formatted as YYYY-MM-DDTHH:MM:SS"}
)

// Event dates are naive UTC wall-clock times.
type Event struct {
	ID          int64
	CreatorID   int64
	Title       string
	Description *string
	EventDate   time.Time
	Location    *string
	LicenseCode string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPast reports whether the event started strictly before now.
func (e Event) IsPast(now time.Time) bool {
	return e.EventDate.Before(now)
}

type CreateParams struct {
	CreatorID   int64
	Title       string
	Description *string
	EventDate   time.Time
	Location    *string
	LicenseCode string
}

type UpdateParams struct {
	ID          int64
	Title       string
	Description *string
	EventDate   time.Time
	Location    *string
	LicenseCode string
}

// Repository persists events. Create and Update return ErrUnknownLicense when
// the license code is not in the reference table; single-row operations return
// ErrNotFound for a missing id.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Get(ctx context.Context, id int64) (*Event, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	// ListAttended returns events before the cutoff with an accepted RSVP by userID.
	ListAttended(ctx context.Context, userID int64, before time.Time) ([]Event, error)
	ListCreated(ctx context.Context, creatorID int64) ([]Event, error)
	Update(ctx context.Context, params UpdateParams) (*Event, error)
	Delete(ctx context.Context, id int64) error
	// NotifyAttendees records a reschedule notification for every accepted
	// attendee of the event and returns how many were written.
	NotifyAttendees(ctx context.Context, eventID int64, oldDate, newDate time.Time) (int, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
