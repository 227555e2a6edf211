package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/licenses"
	"github.com/Togather-Foundation/eventos/internal/domain/notifications"
)

const timestampLayout = "2006-01-02T15:04:05.000000"

type LicensesHandler struct {
	Service *licenses.Service
	Env     string
}

func NewLicensesHandler(service *licenses.Service, env string) *LicensesHandler {
	return &LicensesHandler{Service: service, Env: env}
}

func (h *LicensesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type NotificationsHandler struct {
	Service *notifications.Service
	Env     string
}

func NewNotificationsHandler(service *notifications.Service, env string) *NotificationsHandler {
	return &NotificationsHandler{Service: service, Env: env}
}

type notificationResponse struct {
	ID        int64  `json:"id"`
	EventID   int64  `json:"event_id"`
	Title     string `json:"title"`
	OldDate   string `json:"old_date"`
	NewDate   string `json:"new_date"`
	CreatedAt string `json:"created_at"`
}

// List returns the caller's reschedule notifications, newest first.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	items, err := h.Service.List(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, notificationResponse{
			ID:        n.ID,
			EventID:   n.EventID,
			Title:     n.EventTitle,
			OldDate:   events.FormatDate(n.OldDate),
			NewDate:   events.FormatDate(n.NewDate),
			CreatedAt: n.CreatedAt.UTC().Format(timestampLayout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
