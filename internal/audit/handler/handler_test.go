package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/rbac"
	id "elan/pkg/domain"
	"elan/pkg/requestcontext"
	"elan/pkg/testutil"
)

func setup(t *testing.T, viewer access.Viewer) (*chi.Mux, *audit.InMemoryStore) {
	t.Helper()
	store := audit.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := access.ResolverFunc(func(context.Context, requestcontext.Principal) (access.Viewer, error) {
		return viewer, nil
	})
	r := chi.NewRouter()
	New(audit.NewReader(store), resolver, logger).Register(r)
	return r, store
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(requestcontext.WithPrincipal(req.Context(), requestcontext.Principal{UserID: id.NewUserID()}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListByResource(t *testing.T) {
	officer := testutil.NewViewer(rbac.RoleComplianceOfficer).Build()
	r, store := setup(t, officer)
	actor := id.NewUserID()
	require.NoError(t, store.Append(context.Background(), audit.Event{
		ID:           "01",
		Name:         audit.EventJourneyTransitioned,
		ActorID:      actor,
		ResourceType: rbac.ResourceJourney,
		ResourceID:   "j-1",
		NewState:     "compliance_review",
	}))

	rec := get(r, "/audit/resources/journey/j-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "journey_transitioned", resp.Events[0].Name)
	assert.Equal(t, actor.String(), resp.Events[0].ActorID)

	rec = get(r, "/audit/actors/"+actor.String())
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusBadRequest, get(r, "/audit/resources/yacht/y-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/audit/actors/nope").Code)
}

func TestAuditDeniedWithoutReadAudit(t *testing.T) {
	r, _ := setup(t, testutil.NewViewer(rbac.RoleUHNI).Build())
	assert.Equal(t, http.StatusForbidden, get(r, "/audit/resources/journey/j-1").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/audit/actors/"+id.NewUserID().String()).Code)
}
