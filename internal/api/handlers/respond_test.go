package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_OversizedBodyAnswers413(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"title":"`+strings.Repeat("x", 64)+`"}`))
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var dst map[string]any
	err := decodeJSON(req, &dst)
	require.Error(t, err)

	writeError(rec, req, err, testEnv)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, rec.Body.String())
}

func TestDecodeJSON_EmptyBodyIsEmptyObject(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	var dst struct{ Username string }
	require.NoError(t, decodeJSON(req, &dst))
	assert.Empty(t, dst.Username)
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events/12", nil)
	req.SetPathValue("id", "12")
	id, err := pathID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"", "0", "-3", "1.5", "x"} {
		req.SetPathValue("id", bad)
		_, err := pathID(req, "id")
		assert.Error(t, err, bad)
	}
}
