package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "elan/pkg/domain-errors"
)

type transitionBody struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`

	steps []string
}

func (b *transitionBody) Sanitize() {
	b.steps = append(b.steps, "sanitize")
	b.Reason = strings.TrimSpace(b.Reason)
}

func (b *transitionBody) Normalize() {
	b.steps = append(b.steps, "normalize")
	b.Event = strings.ToLower(b.Event)
}

func (b *transitionBody) Validate() error {
	b.steps = append(b.steps, "validate")
	if b.Event == "" {
		return errors.New("event is required")
	}
	if b.Event == "reject" && b.Reason == "" {
		return dErrors.New(dErrors.CodeMissingReason, "a reason is required to reject a journey")
	}
	return nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/v1/journeys/j/transitions", strings.NewReader(body))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestDecodeJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a single object", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeJSON[transitionBody](w, post(`{"event":"submit"}`), discard, ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, "submit", got.Event)
	})

	cases := map[string]struct {
		body string
		desc string
	}{
		"malformed":     {`{"event":`, "invalid request body"},
		"empty":         {``, "request body is required"},
		"two documents": {`{"event":"a"}{"event":"b"}`, "request body must contain a single JSON object"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			got, ok := DecodeJSON[transitionBody](w, post(tc.body), discard, ctx, "req-1")
			assert.False(t, ok)
			assert.Nil(t, got)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, "bad_request", resp["error"])
			assert.Equal(t, tc.desc, resp["error_description"])
		})
	}

	t.Run("body over the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := post(`{"event":"` + strings.Repeat("x", 64) + `"}`)
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		_, ok := DecodeJSON[transitionBody](w, r, discard, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, "request body too large", decodeError(t, w)["error_description"])
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	ctx := context.Background()

	t.Run("runs preparation in order", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[transitionBody](w, post(`{"event":"SUBMIT","reason":"  "}`), discard, ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, []string{"sanitize", "normalize", "validate"}, got.steps)
		assert.Equal(t, "submit", got.Event)
		assert.Empty(t, got.Reason)
	})

	t.Run("plain error becomes validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[transitionBody](w, post(`{}`), discard, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp["error"])
		assert.Equal(t, "event is required", resp["error_description"])
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[transitionBody](w, post(`{"event":"reject","reason":" "}`), discard, ctx, "req-1")
		assert.False(t, ok)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp["error"])
		assert.Contains(t, resp["error_description"], "reason is required")
	})
}

func TestPrepareRequest_PlainTypes(t *testing.T) {
	type plain struct{ Name string }
	assert.NoError(t, PrepareRequest(&plain{}))
}
