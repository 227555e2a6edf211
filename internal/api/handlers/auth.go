package handlers

import (
	"errors"
	"net/http"

	"github.com/Togather-Foundation/eventos/internal/api/problem"
	"github.com/Togather-Foundation/eventos/internal/audit"
	"github.com/Togather-Foundation/eventos/internal/auth"
	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
	"github.com/Togather-Foundation/eventos/internal/domain/users"
	"github.com/Togather-Foundation/eventos/internal/metrics"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *auth.JWTManager
	Audit  *audit.Logger
	Env    string
}

func NewAuthHandler(svc *users.Service, tokens *auth.JWTManager, auditLogger *audit.Logger, env string) *AuthHandler {
	return &AuthHandler{Users: svc, Tokens: tokens, Audit: auditLogger, Env: env}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

type profileResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       *int   `json:"age"`
	CreatedAt string `json:"created_at"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var params users.RegisterParams
	if err := decodeJSON(r, &params); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		writeError(w, r, err, h.Env)
		return
	}

	user, err := h.Users.Register(r.Context(), params)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(outcomeFor(err)).Inc()
		h.Audit.LogFailure(audit.ActionRegister, params.Username, audit.ClientIP(r), map[string]string{"reason": reasonFor(err)})
		writeError(w, r, err, h.Env)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	h.Audit.LogSuccess(audit.ActionRegister, user.Username, "user", formatID(user.ID), audit.ClientIP(r), nil)
	writeJSON(w, http.StatusCreated, messageResponse{Msg: "user created"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var params users.LoginParams
	if err := decodeJSON(r, &params); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		writeError(w, r, err, h.Env)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), params)
	if err != nil {
		outcome := outcomeFor(err)
		switch {
		case errors.Is(err, users.ErrInvalidCredentials):
			outcome = "invalid_credentials"
		case errors.Is(err, users.ErrNotFound):
			outcome = "unknown_user"
		}
		metrics.LoginsTotal.WithLabelValues(outcome).Inc()
		h.Audit.LogFailure(audit.ActionLogin, params.Username, audit.ClientIP(r), map[string]string{"reason": outcome})
		writeError(w, r, err, h.Env)
		return
	}

	token, err := h.Tokens.Generate(user.ID, user.Username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		problem.Write(w, r, http.StatusInternalServerError, "", err, h.Env)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.Audit.LogSuccess(audit.ActionLogin, user.Username, "user", formatID(user.ID), audit.ClientIP(r), nil)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, Username: user.Username})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	user, err := h.Users.Get(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Age:       user.Age,
		CreatedAt: user.CreatedAt.UTC().Format(timestampLayout),
	})
}

// DeleteMe removes the caller's account together with their events, RSVPs,
// comments and notifications.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	if err := h.Users.Delete(r.Context(), caller.UserID); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	h.Audit.LogSuccess(audit.ActionDeleteUser, caller.Username, "user", formatID(caller.UserID), audit.ClientIP(r), nil)
	writeJSON(w, http.StatusOK, messageResponse{Msg: "user deleted"})
}

func outcomeFor(err error) string {
	switch {
	case apperr.IsValidation(err):
		return "invalid"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func reasonFor(err error) string {
	if msg, ok := apperr.Message(err); ok {
		return msg
	}
	return "internal error"
}
