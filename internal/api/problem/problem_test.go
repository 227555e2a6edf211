package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, res *httptest.ResponseRecorder) Body {
	t.Helper()
	var body Body
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestWriteError_MapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", apperr.ValidationError{Field: "title", Message: "is required"}, http.StatusBadRequest, "invalid title: is required"},
		{"precondition", fmt.Errorf("rsvp: %w", apperr.PreconditionError{Message: "event already happened"}), http.StatusBadRequest, "event already happened"},
		{"unauthorized", apperr.Unauthorized("invalid credentials"), http.StatusUnauthorized, "invalid credentials"},
		{"forbidden", apperr.Forbidden("only the creator can modify this event"), http.StatusForbidden, "only the creator can modify this event"},
		{"not found", fmt.Errorf("get: %w", apperr.NotFound("event not found")), http.StatusNotFound, "event not found"},
		{"conflict", apperr.Conflict("username is already taken"), http.StatusConflict, "username is already taken"},
		{"unclassified", errors.New("connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			res := httptest.NewRecorder()

			WriteError(res, req, tt.err, "production")

			require.Equal(t, tt.status, res.Code)
			require.Equal(t, "application/json", res.Header().Get("Content-Type"))
			body := decode(t, res)
			require.Equal(t, tt.msg, body.Error)
			require.Empty(t, body.Detail)
		})
	}
}

func TestWrite_DevIncludesDetailForServerErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, "boom", errors.New("boom"), "development")

	body := decode(t, res)
	require.Equal(t, "internal server error", body.Error)
	require.Equal(t, "boom", body.Detail)
}

func TestWrite_ClientErrorKeepsMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, "invalid JSON body", nil, "production")

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "invalid JSON body", decode(t, res).Error)
}

func TestStatusForNil(t *testing.T) {
	require.Equal(t, http.StatusOK, StatusFor(nil))
}
