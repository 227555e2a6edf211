package comments

import (
	"context"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

const (
	pastEvent   = int64(1)
	futureEvent = int64(2)
)

type memoryRepo struct {
	events   map[int64]time.Time
	accepted map[int64]map[int64]bool
	comments []Comment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		events: map[int64]time.Time{
			pastEvent:   fixedNow.Add(-time.Hour),
			futureEvent: fixedNow.Add(time.Hour),
		},
		accepted: map[int64]map[int64]bool{
			pastEvent:   {10: true},
			futureEvent: {10: true},
		},
	}
}

func (r *memoryRepo) EventDate(_ context.Context, eventID int64) (time.Time, error) {
	date, ok := r.events[eventID]
	if !ok {
		return time.Time{}, events.ErrNotFound
	}
	return date, nil
}

func (r *memoryRepo) HasAcceptedRSVP(_ context.Context, userID, eventID int64) (bool, error) {
	return r.accepted[eventID][userID], nil
}

func (r *memoryRepo) Create(_ context.Context, p CreateParams) (*Comment, error) {
	c := Comment{ID: int64(len(r.comments) + 1), UserID: p.UserID, EventID: p.EventID, Username: "ana", Rating: p.Rating, Content: p.Content, CreatedAt: fixedNow}
	r.comments = append(r.comments, c)
	return &c, nil
}

func (r *memoryRepo) ListByEvent(_ context.Context, eventID int64) ([]Comment, error) {
	var out []Comment
	for _, c := range r.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return fn(ctx, r)
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func rating(v int) *int { return &v }

func TestAdd_Success(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	c, err := svc.Add(context.Background(), 10, pastEvent, Input{Rating: rating(5), Content: " Great <b>night</b> "})
	require.NoError(t, err)
	require.Equal(t, 5, c.Rating)
	require.Equal(t, "Great night", c.Content)

	items, err := svc.List(context.Background(), pastEvent)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "ana", items[0].Username)
}

func TestAdd_Validation(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	tests := []struct {
		name  string
		input Input
		field string
	}{
		{"missing rating", Input{Content: "nice"}, "rating"},
		{"rating zero", Input{Rating: rating(0), Content: "nice"}, "rating"},
		{"rating above five", Input{Rating: rating(6), Content: "nice"}, "rating"},
		{"blank content", Input{Rating: rating(3), Content: "   "}, "content"},
		{"markup only content", Input{Rating: rating(3), Content: "<script>x</script>"}, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), 10, pastEvent, tt.input)
			var verr apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAdd_Rules(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	in := Input{Rating: rating(4), Content: "ok"}

	_, err := svc.Add(ctx, 10, 99, in)
	require.ErrorIs(t, err, events.ErrNotFound)

	_, err = svc.Add(ctx, 10, futureEvent, in)
	require.ErrorIs(t, err, ErrEventNotPast)

	_, err = svc.Add(ctx, 11, pastEvent, in)
	require.ErrorIs(t, err, ErrNotAttendee)
	require.True(t, apperr.IsPrecondition(err))
}

func TestList_EmptyIsNotNil(t *testing.T) {
	items, err := newTestService(newMemoryRepo()).List(context.Background(), pastEvent)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}
