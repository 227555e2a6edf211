package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
	"github.com/rs/zerolog"
)

const contentType = "application/json"

const internalMessage = "internal server error"

// Body is the JSON error payload returned by every endpoint.
type Body struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case apperr.IsValidation(err), apperr.IsPrecondition(err):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError classifies err and writes the matching response.
func WriteError(w http.ResponseWriter, r *http.Request, err error, env string) {
	status := StatusFor(err)
	msg, ok := apperr.Message(err)
	if !ok || status >= http.StatusInternalServerError {
		msg = internalMessage
	}
	Write(w, r, status, msg, err, env)
}

// Write sends {"error": msg}. Server errors never expose err to the client
// outside development and test.
func Write(w http.ResponseWriter, r *http.Request, status int, msg string, err error, env string) {
	body := Body{Error: msg}
	if status >= http.StatusInternalServerError {
		body.Error = internalMessage
		if err != nil && (env == "development" || env == "test") {
			body.Detail = err.Error()
		}
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		} else {
			event = logger.Warn()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(body.Error)
	}

	WriteBody(w, status, body)
}

func WriteBody(w http.ResponseWriter, status int, body Body) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
