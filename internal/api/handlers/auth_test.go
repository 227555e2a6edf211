package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventos/internal/api/middleware"
	"github.com/Togather-Foundation/eventos/internal/audit"
	"github.com/Togather-Foundation/eventos/internal/auth"
	"github.com/Togather-Foundation/eventos/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthHandler(t *testing.T, seed ...*users.User) (*AuthHandler, *stubUsersRepo) {
	t.Helper()
	repo := newStubUsersRepo(seed...)
	tokens := auth.NewJWTManager("handler-test-secret-handler-test-secret", time.Hour, "eventos")
	return NewAuthHandler(users.NewService(repo, zerolog.Nop()), tokens, audit.NewLoggerWithZerolog(zerolog.Nop()), testEnv), repo
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister(t *testing.T) {
	h, repo := newAuthHandler(t)

	rec := serve(h.Register, request(t, http.MethodPost, "/auth/register",
		`{"username":" ana ","password":"x","first_name":"Ana","last_name":"Lee","age":30}`, nil, nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"msg":"user created"}`, rec.Body.String())

	stored, err := repo.GetByUsername(t.Context(), "ana")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("x")))
	require.NotNil(t, stored.Age)
	assert.Equal(t, 30, *stored.Age)
}

func TestRegister_Errors(t *testing.T) {
	existing := &users.User{ID: 1, Username: "ana", PasswordHash: "h", FirstName: "Ana", LastName: "Lee"}

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{name: "empty body", body: "", status: http.StatusBadRequest, message: "invalid username: is required"},
		{name: "blank password", body: `{"username":"bo","password":"  ","first_name":"B","last_name":"O"}`, status: http.StatusBadRequest, message: "invalid password: is required"},
		{name: "missing last name", body: `{"username":"bo","password":"p","first_name":"B"}`, status: http.StatusBadRequest, message: "invalid last_name: is required"},
		{name: "malformed json", body: `{"username":`, status: http.StatusBadRequest, message: "invalid body: must be a valid JSON object"},
		{name: "duplicate", body: `{"username":"ana","password":"p","first_name":"A","last_name":"L"}`, status: http.StatusConflict, message: "username is already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newAuthHandler(t, existing)
			rec := serve(h.Register, request(t, http.MethodPost, "/auth/register", tt.body, nil, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}
}

func TestLogin(t *testing.T) {
	user := &users.User{ID: 7, Username: "ana", PasswordHash: hashed(t, "secret"), FirstName: "Ana", LastName: "Lee"}
	h, _ := newAuthHandler(t, user)

	rec := serve(h.Login, request(t, http.MethodPost, "/auth/login", `{"username":"ana","password":"secret"}`, nil, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody[loginResponse](t, rec)
	assert.Equal(t, "ana", body.Username)
	claims, err := h.Tokens.Validate(body.AccessToken)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestLogin_Errors(t *testing.T) {
	user := &users.User{ID: 7, Username: "ana", PasswordHash: hashed(t, "secret"), FirstName: "Ana", LastName: "Lee"}

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{name: "missing password", body: `{"username":"ana"}`, status: http.StatusBadRequest, message: "invalid password: is required"},
		{name: "unknown user", body: `{"username":"nobody","password":"secret"}`, status: http.StatusNotFound, message: "user not found"},
		{name: "wrong password", body: `{"username":"ana","password":"nope"}`, status: http.StatusUnauthorized, message: "invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newAuthHandler(t, user)
			rec := serve(h.Login, request(t, http.MethodPost, "/auth/login", tt.body, nil, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}
}

func TestMe(t *testing.T) {
	user := &users.User{
		ID: 3, Username: "ana", FirstName: "Ana", LastName: "Lee", Age: ptr(41),
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	h, _ := newAuthHandler(t, user)

	rec := serve(h.Me, request(t, http.MethodGet, "/me", "", &middleware.Identity{UserID: 3, Username: "ana"}, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":3,"username":"ana","first_name":"Ana","last_name":"Lee","age":41,"created_at":"2026-03-01T09:30:00.000000"}`, rec.Body.String())

	rec = serve(h.Me, request(t, http.MethodGet, "/me", "", &middleware.Identity{UserID: 99, Username: "ghost"}, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", errorBody(t, rec))

	rec = serve(h.Me, request(t, http.MethodGet, "/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteMe(t *testing.T) {
	user := &users.User{ID: 3, Username: "ana", FirstName: "Ana", LastName: "Lee"}
	h, repo := newAuthHandler(t, user)
	caller := &middleware.Identity{UserID: 3, Username: "ana"}

	rec := serve(h.DeleteMe, request(t, http.MethodDelete, "/me", "", caller, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"user deleted"}`, rec.Body.String())
	assert.Empty(t, repo.byID)

	rec = serve(h.DeleteMe, request(t, http.MethodDelete, "/me", "", caller, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
