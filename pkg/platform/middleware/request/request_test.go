package request

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/pkg/requestcontext"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRequestID(t *testing.T) {
	serve := func(header string) (string, string) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("X-Request-ID", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return seen, rec.Header().Get("X-Request-ID")
	}

	t.Run("generates a uuid when absent", func(t *testing.T) {
		seen, header := serve("")
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, header)
	})

	t.Run("keeps a safe client id", func(t *testing.T) {
		seen, header := serve("concierge.trace_42")
		assert.Equal(t, "concierge.trace_42", seen)
		assert.Equal(t, "concierge.trace_42", header)
	})

	for name, bad := range map[string]string{
		"too long":  strings.Repeat("a", MaxRequestIDLength+1),
		"newline":   "valid\ninjected",
		"space":     "request id",
		"quote":     `request"id`,
		"semicolon": "request;id",
	} {
		t.Run("replaces "+name, func(t *testing.T) {
			seen, _ := serve(bad)
			assert.NotEqual(t, bad, seen)
			assert.Len(t, seen, 36)
		})
	}

	t.Run("accepts exactly max length", func(t *testing.T) {
		id := strings.Repeat("x", MaxRequestIDLength)
		seen, _ := serve(id)
		assert.Equal(t, id, seen)
	})
}

func TestRequestTime(t *testing.T) {
	var first, second time.Time
	h := RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, first.IsZero())
	assert.Equal(t, first, second)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	h := BodyLimit(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 11))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(ok))
	cases := []struct {
		method, contentType string
		want                int
	}{
		{http.MethodPost, "application/json", http.StatusOK},
		{http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{http.MethodPost, "", http.StatusOK},
		{http.MethodPut, "text/plain", http.StatusUnsupportedMediaType},
		{http.MethodGet, "text/plain", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/", strings.NewReader("{}"))
		if tc.contentType != "" {
			req.Header.Set("Content-Type", tc.contentType)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "%s %q", tc.method, tc.contentType)
	}
}

func TestLatencyUsesRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(Latency(m))
	r.Get("/journeys/{journeyID}", ok)

	for _, path := range []string{"/journeys/a", "/journeys/b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 1, testutil.CollectAndCount(m.EndpointLatency))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Responses.WithLabelValues(http.MethodGet, "/journeys/{journeyID}", "200")))
}
