package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventos/internal/api/middleware"
	"github.com/Togather-Foundation/eventos/internal/domain/comments"
	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/rsvps"
	"github.com/Togather-Foundation/eventos/internal/domain/users"
	"github.com/stretchr/testify/require"
)

const testEnv = "test"

type stubUsersRepo struct {
	byID   map[int64]*users.User
	nextID int64
}

func newStubUsersRepo(seed ...*users.User) *stubUsersRepo {
	repo := &stubUsersRepo{byID: map[int64]*users.User{}, nextID: 1}
	for _, u := range seed {
		repo.byID[u.ID] = u
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (s *stubUsersRepo) Create(_ context.Context, p users.CreateParams) (*users.User, error) {
	for _, u := range s.byID {
		if u.Username == p.Username {
			return nil, users.ErrUsernameTaken
		}
	}
	u := &users.User{ID: s.nextID, Username: p.Username, PasswordHash: p.PasswordHash, FirstName: p.FirstName, LastName: p.LastName, Age: p.Age}
	s.byID[u.ID] = u
	s.nextID++
	return u, nil
}

func (s *stubUsersRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (s *stubUsersRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *stubUsersRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.byID[id]; !ok {
		return users.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// stubStore backs the event, RSVP and comment repositories with shared maps.
type stubStore struct {
	events   map[int64]*events.Event
	rsvps    []rsvps.RSVP
	comments []comments.Comment
	notified int
}

func newStubStore(evs ...events.Event) *stubStore {
	s := &stubStore{events: map[int64]*events.Event{}}
	for i := range evs {
		e := evs[i]
		s.events[e.ID] = &e
	}
	return s
}

type stubEventsRepo struct{ store *stubStore }

func (r stubEventsRepo) Create(_ context.Context, p events.CreateParams) (*events.Event, error) {
	if p.LicenseCode != "CC-BY" {
		return nil, events.ErrUnknownLicense
	}
	id := int64(len(r.store.events) + 1)
	e := &events.Event{ID: id, CreatorID: p.CreatorID, Title: p.Title, Description: p.Description, EventDate: p.EventDate, Location: p.Location, LicenseCode: p.LicenseCode}
	r.store.events[id] = e
	return e, nil
}

func (r stubEventsRepo) Get(_ context.Context, id int64) (*events.Event, error) {
	e, ok := r.store.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r stubEventsRepo) GetForUpdate(ctx context.Context, id int64) (*events.Event, error) {
	return r.Get(ctx, id)
}

func (r stubEventsRepo) all() []events.Event {
	out := make([]events.Event, 0, len(r.store.events))
	for _, e := range r.store.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out
}

func (r stubEventsRepo) List(context.Context) ([]events.Event, error) {
	return r.all(), nil
}

func (r stubEventsRepo) ListAttended(_ context.Context, userID int64, before time.Time) ([]events.Event, error) {
	var out []events.Event
	for _, e := range r.all() {
		if !e.EventDate.Before(before) {
			continue
		}
		for _, rsvp := range r.store.rsvps {
			if rsvp.UserID == userID && rsvp.EventID == e.ID && rsvp.Status == rsvps.StatusAccepted {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (r stubEventsRepo) ListCreated(_ context.Context, creatorID int64) ([]events.Event, error) {
	var out []events.Event
	for _, e := range r.all() {
		if e.CreatorID == creatorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r stubEventsRepo) Update(_ context.Context, p events.UpdateParams) (*events.Event, error) {
	e, ok := r.store.events[p.ID]
	if !ok {
		return nil, events.ErrNotFound
	}
	e.Title, e.Description, e.EventDate, e.Location, e.LicenseCode = p.Title, p.Description, p.EventDate, p.Location, p.LicenseCode
	copied := *e
	return &copied, nil
}

func (r stubEventsRepo) Delete(_ context.Context, id int64) error {
	delete(r.store.events, id)
	return nil
}

func (r stubEventsRepo) NotifyAttendees(_ context.Context, eventID int64, _, _ time.Time) (int, error) {
	n := 0
	for _, rsvp := range r.store.rsvps {
		if rsvp.EventID == eventID && rsvp.Status == rsvps.StatusAccepted {
			n++
		}
	}
	r.store.notified += n
	return n, nil
}

func (r stubEventsRepo) WithTx(ctx context.Context, fn func(context.Context, events.Repository) error) error {
	return fn(ctx, r)
}

type stubRSVPsRepo struct{ store *stubStore }

func (r stubRSVPsRepo) EventDate(_ context.Context, eventID int64) (time.Time, error) {
	e, ok := r.store.events[eventID]
	if !ok {
		return time.Time{}, events.ErrNotFound
	}
	return e.EventDate, nil
}

func (r stubRSVPsRepo) Get(_ context.Context, userID, eventID int64) (*rsvps.RSVP, error) {
	for _, rsvp := range r.store.rsvps {
		if rsvp.UserID == userID && rsvp.EventID == eventID {
			copied := rsvp
			return &copied, nil
		}
	}
	return nil, rsvps.ErrNotFound
}

func (r stubRSVPsRepo) Create(_ context.Context, p rsvps.CreateParams) (*rsvps.RSVP, error) {
	respondedAt := p.RespondedAt
	rsvp := rsvps.RSVP{ID: int64(len(r.store.rsvps) + 1), UserID: p.UserID, EventID: p.EventID, Status: p.Status, RespondedAt: &respondedAt}
	r.store.rsvps = append(r.store.rsvps, rsvp)
	return &rsvp, nil
}

func (r stubRSVPsRepo) Delete(_ context.Context, id int64) error {
	for i, rsvp := range r.store.rsvps {
		if rsvp.ID == id {
			r.store.rsvps = append(r.store.rsvps[:i], r.store.rsvps[i+1:]...)
			return nil
		}
	}
	return rsvps.ErrNotFound
}

func (r stubRSVPsRepo) WithTx(ctx context.Context, fn func(context.Context, rsvps.Repository) error) error {
	return fn(ctx, r)
}

type stubCommentsRepo struct{ store *stubStore }

func (r stubCommentsRepo) EventDate(ctx context.Context, eventID int64) (time.Time, error) {
	return stubRSVPsRepo(r).EventDate(ctx, eventID)
}

func (r stubCommentsRepo) HasAcceptedRSVP(_ context.Context, userID, eventID int64) (bool, error) {
	for _, rsvp := range r.store.rsvps {
		if rsvp.UserID == userID && rsvp.EventID == eventID && rsvp.Status == rsvps.StatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (r stubCommentsRepo) Create(_ context.Context, p comments.CreateParams) (*comments.Comment, error) {
	c := comments.Comment{ID: int64(len(r.store.comments) + 1), UserID: p.UserID, EventID: p.EventID, Username: "user", Rating: p.Rating, Content: p.Content, CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	r.store.comments = append(r.store.comments, c)
	return &c, nil
}

func (r stubCommentsRepo) ListByEvent(_ context.Context, eventID int64) ([]comments.Comment, error) {
	var out []comments.Comment
	for _, c := range r.store.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r stubCommentsRepo) WithTx(ctx context.Context, fn func(context.Context, comments.Repository) error) error {
	return fn(ctx, r)
}

// request builds an authenticated request carrying path values.
func request(t *testing.T, method, target, body string, caller *middleware.Identity, pathValues map[string]string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if caller != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *caller))
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["error"]
}

func ptr[T any](v T) *T { return &v }
