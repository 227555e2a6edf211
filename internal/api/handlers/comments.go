package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
	"github.com/Togather-Foundation/eventos/internal/domain/comments"
	"github.com/Togather-Foundation/eventos/internal/metrics"
)

var errRatingNotInteger = apperr.ValidationError{Field: "rating", Message: "must be an integer between 1 and 5"}

type CommentsHandler struct {
	Service *comments.Service
	Env     string
}

func NewCommentsHandler(service *comments.Service, env string) *CommentsHandler {
	return &CommentsHandler{Service: service, Env: env}
}

// commentRequest keeps rating raw: clients send it as a number or as a
// numeric string.
type commentRequest struct {
	Rating  json.RawMessage `json:"rating"`
	Content string          `json:"content"`
}

type commentResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	rating, err := parseRating(req.Rating)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	if _, err := h.Service.Add(r.Context(), caller.UserID, eventID, comments.Input{Rating: rating, Content: req.Content}); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.CommentsTotal.Inc()
	writeJSON(w, http.StatusCreated, messageResponse{Msg: "comment added"})
}

func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	out := make([]commentResponse, 0, len(items))
	for _, c := range items {
		out = append(out, commentResponse{
			ID:        c.ID,
			UserID:    c.UserID,
			Username:  c.Username,
			Rating:    c.Rating,
			Content:   c.Content,
			CreatedAt: c.CreatedAt.UTC().Format(timestampLayout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// parseRating returns nil for an absent or null rating so validation reports
// it as required. Integral numbers and integer strings are accepted.
func parseRating(raw json.RawMessage) (*int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, errRatingNotInteger
		}
		text = strings.TrimSpace(text)
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, errRatingNotInteger
		}
		return &n, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errRatingNotInteger
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, errRatingNotInteger
	}
	n := int(f)
	return &n, nil
}
