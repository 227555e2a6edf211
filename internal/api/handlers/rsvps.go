package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/eventos/internal/domain/rsvps"
	"github.com/Togather-Foundation/eventos/internal/metrics"
)

type RSVPsHandler struct {
	Service *rsvps.Service
	Env     string
}

func NewRSVPsHandler(service *rsvps.Service, env string) *RSVPsHandler {
	return &RSVPsHandler{Service: service, Env: env}
}

type rsvpStatusResponse struct {
	Status *rsvps.Status `json:"status"`
}

func (h *RSVPsHandler) Status(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	status, err := h.Service.Status(r.Context(), caller.UserID, eventID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, rsvpStatusResponse{Status: status})
}

func (h *RSVPsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	if _, err := h.Service.Create(r.Context(), caller.UserID, eventID); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.RSVPsTotal.WithLabelValues("create").Inc()
	writeJSON(w, http.StatusCreated, messageResponse{Msg: "RSVP created"})
}

func (h *RSVPsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	if err := h.Service.Cancel(r.Context(), caller.UserID, eventID); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.RSVPsTotal.WithLabelValues("cancel").Inc()
	writeJSON(w, http.StatusOK, messageResponse{Msg: "RSVP deleted"})
}
