package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/reports"
)

type ReportsHandler struct {
	Service *reports.Service
	Env     string
}

func NewReportsHandler(service *reports.Service, env string) *ReportsHandler {
	return &ReportsHandler{Service: service, Env: env}
}

type statResponse struct {
	EventID       int64   `json:"event_id"`
	EventTitle    string  `json:"event_title"`
	TotalRSVPs    int     `json:"total_rsvps"`
	AcceptedCount int     `json:"accepted_count"`
	AverageRating float64 `json:"average_rating"`
}

type attendeeResponse struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

type historyResponse struct {
	EventID    int64              `json:"event_id"`
	EventTitle string             `json:"event_title"`
	EventDate  string             `json:"event_date"`
	Attendees  []attendeeResponse `json:"attendees"`
}

func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	out := make([]statResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, statResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.History(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		attendees := make([]attendeeResponse, 0, len(e.Attendees))
		for _, a := range e.Attendees {
			attendees = append(attendees, attendeeResponse(a))
		}
		out = append(out, historyResponse{
			EventID:    e.EventID,
			EventTitle: e.EventTitle,
			EventDate:  events.FormatDate(e.EventDate),
			Attendees:  attendees,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
