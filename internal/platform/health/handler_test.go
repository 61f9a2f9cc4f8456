package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivenessAndStatus(t *testing.T) {
	h := New("test")
	assert.Equal(t, http.StatusOK, serve(h, "/health/live").Code)

	rec := serve(h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "test", status.Environment)
	assert.Equal(t, Version, status.Version)
}

func TestReadiness(t *testing.T) {
	h := New("test")
	h.RegisterCheck("postgres", func(context.Context) error { return nil })

	rec := serve(h, "/health/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	h.RegisterCheck("kafka", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("no brokers reachable")
	})
	rec = serve(h, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "up", resp.Checks["postgres"])
	assert.Equal(t, "down: no brokers reachable", resp.Checks["kafka"])
}
