package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	h := NewHealthChecker("1.0.0", "abc", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	h := NewHealthChecker("1.0.0", "abc", map[string]ReadinessCheck{"database": ok, "migrations": ok})
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[HealthCheck](t, rec)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "1.0.0", body.Version)
	assert.Equal(t, "pass", body.Checks["database"].Status)

	h = NewHealthChecker("1.0.0", "abc", map[string]ReadinessCheck{"database": failing, "migrations": ok})
	rec = httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body = decodeBody[HealthCheck](t, rec)
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "fail", body.Checks["database"].Status)
	assert.Equal(t, "connection refused", body.Checks["database"].Message)
	assert.Equal(t, "pass", body.Checks["migrations"].Status)
}

func TestReadyz_ShuttingDown(t *testing.T) {
	h := NewHealthChecker("", "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"shutting_down"}`, rec.Body.String())
}
