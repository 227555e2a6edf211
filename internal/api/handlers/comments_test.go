package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/comments"
	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/rsvps"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentsHandler(store *stubStore) *CommentsHandler {
	return NewCommentsHandler(comments.NewService(stubCommentsRepo{store: store}, zerolog.Nop()), testEnv)
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw     string
		want    *int
		wantErr bool
	}{
		{raw: ``, want: nil},
		{raw: `null`, want: nil},
		{raw: `4`, want: ptr(4)},
		{raw: `4.0`, want: ptr(4)},
		{raw: `"5"`, want: ptr(5)},
		{raw: `" 3 "`, want: ptr(3)},
		{raw: `0`, want: ptr(0)},
		{raw: `4.5`, wantErr: true},
		{raw: `"four"`, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `[1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseRating(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Equal(t, errRatingNotInteger, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommentsCreate(t *testing.T) {
	store := newStubStore(events.Event{ID: 1, CreatorID: 1, Title: "done", EventDate: naiveNow().Add(-time.Hour)})
	store.rsvps = []rsvps.RSVP{{ID: 1, UserID: 2, EventID: 1, Status: rsvps.StatusAccepted}}
	h := newCommentsHandler(store)
	path := map[string]string{"event_id": "1"}

	rec := serve(h.Create, request(t, http.MethodPost, "/comments/1", `{"rating":"5","content":"great"}`, bob, path))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"msg":"comment added"}`, rec.Body.String())
	require.Len(t, store.comments, 1)
	assert.Equal(t, 5, store.comments[0].Rating)

	rec = serve(h.List, request(t, http.MethodGet, "/comments/1", "", alice, path))
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody[[]commentResponse](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "great", listed[0].Content)
	assert.Equal(t, int64(2), listed[0].UserID)
	assert.Equal(t, "2024-03-01T10:00:00.000000", listed[0].CreatedAt)
}

func TestCommentsCreate_Rejections(t *testing.T) {
	now := naiveNow()
	store := newStubStore(
		events.Event{ID: 1, CreatorID: 1, Title: "done", EventDate: now.Add(-time.Hour)},
		events.Event{ID: 2, CreatorID: 1, Title: "upcoming", EventDate: now.Add(time.Hour)},
	)
	store.rsvps = []rsvps.RSVP{
		{ID: 1, UserID: 2, EventID: 1, Status: rsvps.StatusAccepted},
		{ID: 2, UserID: 2, EventID: 2, Status: rsvps.StatusAccepted},
	}

	tests := []struct {
		name    string
		eventID string
		caller  string
		body    string
		status  int
		message string
	}{
		{name: "missing rating", eventID: "1", body: `{"content":"x"}`, status: http.StatusBadRequest, message: "invalid rating: is required"},
		{name: "blank content", eventID: "1", body: `{"rating":3,"content":"   "}`, status: http.StatusBadRequest, message: "invalid content: is required"},
		{name: "fractional rating", eventID: "1", body: `{"rating":2.5,"content":"x"}`, status: http.StatusBadRequest, message: "invalid rating: must be an integer between 1 and 5"},
		{name: "rating out of range", eventID: "1", body: `{"rating":6,"content":"x"}`, status: http.StatusBadRequest, message: "invalid rating: must be at most 5"},
		{name: "future event", eventID: "2", body: `{"rating":3,"content":"x"}`, status: http.StatusBadRequest, message: "you can only comment on an event that has already taken place"},
		{name: "not attended", eventID: "1", caller: "alice", body: `{"rating":3,"content":"x"}`, status: http.StatusBadRequest, message: "you cannot comment without having confirmed attendance"},
		{name: "missing event", eventID: "9", body: `{"rating":3,"content":"x"}`, status: http.StatusNotFound, message: "event not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCommentsHandler(store)
			caller := bob
			if tt.caller == "alice" {
				caller = alice
			}
			rec := serve(h.Create, request(t, http.MethodPost, "/comments/"+tt.eventID, tt.body, caller, map[string]string{"event_id": tt.eventID}))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}
	assert.Empty(t, store.comments)
}

func TestCommentsList_EmptyIsArray(t *testing.T) {
	h := newCommentsHandler(newStubStore())
	rec := serve(h.List, request(t, http.MethodGet, "/comments/3", "", alice, map[string]string{"event_id": "3"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
