package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Togather-Foundation/eventos/internal/api/middleware"
	"github.com/Togather-Foundation/eventos/internal/api/problem"
	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
)

type messageResponse struct {
	Msg string `json:"msg"`
	ID  int64  `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err to a status and writes {"error": ...}. Oversized
// bodies answer 413 before classification.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, "request body too large", err, env)
		return
	}
	problem.WriteError(w, r, err, env)
}

// decodeJSON reads a JSON object into dst. An empty body decodes as {} so
// missing fields surface as validation errors on the payload itself.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return err
		case errors.Is(err, io.EOF):
			return nil
		default:
			return apperr.ValidationError{Field: "body", Message: "must be a valid JSON object"}
		}
	}
	return nil
}

// pathID parses a positive integer path segment.
func pathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ValidationError{Field: key, Message: "must be a positive integer"}
	}
	return id, nil
}

// identity returns the caller set by middleware.JWTAuth. Handlers mounted
// behind JWTAuth always have one; a missing identity is answered with 401.
func identity(w http.ResponseWriter, r *http.Request, env string) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "missing authorization header", nil, env)
		return middleware.Identity{}, false
	}
	return id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
