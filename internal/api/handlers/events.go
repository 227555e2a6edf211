package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/eventos/internal/audit"
	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/users"
	"github.com/Togather-Foundation/eventos/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Users   *users.Service
	Audit   *audit.Logger
	Env     string
}

func NewEventsHandler(service *events.Service, usersSvc *users.Service, auditLogger *audit.Logger, env string) *EventsHandler {
	return &EventsHandler{Service: service, Users: usersSvc, Audit: auditLogger, Env: env}
}

type eventResponse struct {
	ID          int64   `json:"id"`
	CreatorID   int64   `json:"creator_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	EventDate   string  `json:"event_date"`
	Location    *string `json:"location"`
	LicenseCode string  `json:"license_code"`
	IsPast      *bool   `json:"is_past,omitempty"`
}

type updateResponse struct {
	Msg      string        `json:"msg"`
	Event    eventResponse `json:"event"`
	Notified int           `json:"notified"`
}

func toEventResponse(e events.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		CreatorID:   e.CreatorID,
		Title:       e.Title,
		Description: e.Description,
		EventDate:   events.FormatDate(e.EventDate),
		Location:    e.Location,
		LicenseCode: e.LicenseCode,
	}
}

func toListingResponse(l events.Listing) eventResponse {
	resp := toEventResponse(l.Event)
	past := l.IsPast
	resp.IsPast = &past
	return resp
}

func toListingResponses(items []events.Listing) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toListingResponse(item))
	}
	return out
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}
	// A token can outlive its account; such callers get 404 like /me.
	if _, err := h.Users.Get(r.Context(), caller.UserID); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(items))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	var in events.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	created, err := h.Service.Create(r.Context(), caller.UserID, in)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.EventsCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, messageResponse{Msg: "event created", ID: created.ID})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(item))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var in events.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Update(r.Context(), caller.UserID, id, in)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	if result.Notified > 0 {
		metrics.RescheduleNotificationsTotal.Add(float64(result.Notified))
	}
	h.Audit.LogSuccess(audit.ActionUpdateEvent, caller.Username, "event", formatID(id), audit.ClientIP(r), nil)
	writeJSON(w, http.StatusOK, updateResponse{
		Msg:      "event updated",
		Event:    toEventResponse(*result.Event),
		Notified: result.Notified,
	})
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	deleted, err := h.Service.Delete(r.Context(), caller.UserID, id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	h.Audit.LogSuccess(audit.ActionDeleteEvent, caller.Username, "event", formatID(id), audit.ClientIP(r), map[string]string{"title": deleted.Title})
	writeJSON(w, http.StatusOK, messageResponse{Msg: "event deleted"})
}

// Attended lists past events the caller has an accepted RSVP for.
func (h *EventsHandler) Attended(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	items, err := h.Service.Attended(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	out := make([]eventResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toEventResponse(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *EventsHandler) Created(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	items, err := h.Service.Created(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(items))
}
