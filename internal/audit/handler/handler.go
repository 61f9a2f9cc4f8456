package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

type Reader interface {
	ListByResource(ctx context.Context, actor rbac.Actor, resource rbac.Resource, resourceID string) ([]audit.Event, error)
	ListByActor(ctx context.Context, actor rbac.Actor, actorID id.UserID) ([]audit.Event, error)
}

// Handler exposes the audit trail read-only to callers holding read on audit.
type Handler struct {
	reader   Reader
	resolver access.Resolver
	logger   *slog.Logger
}

func New(reader Reader, resolver access.Resolver, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, resolver: resolver, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/resources/{resourceType}/{resourceID}", h.HandleListByResource)
	r.Get("/audit/actors/{userID}", h.HandleListByActor)
}

type EventResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ActorID       string            `json:"actor_id,omitempty"`
	ActorRole     string            `json:"actor_role,omitempty"`
	Domain        string            `json:"domain,omitempty"`
	ResourceType  string            `json:"resource_type"`
	ResourceID    string            `json:"resource_id"`
	Action        string            `json:"action,omitempty"`
	PreviousState string            `json:"previous_state,omitempty"`
	NewState      string            `json:"new_state,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Client        string            `json:"client,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

type ListResponse struct {
	Events []EventResponse `json:"events"`
}

func (h *Handler) HandleListByResource(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	resource, err := rbac.ParseResource(chi.URLParam(r, "resourceType"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown resource type"))
		return
	}
	events, err := h.reader.ListByResource(r.Context(), viewer.Actor(), resource, chi.URLParam(r, "resourceID"))
	h.respond(w, r, events, err)
}

func (h *Handler) HandleListByActor(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	actorID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	events, err := h.reader.ListByActor(r.Context(), viewer.Actor(), actorID)
	h.respond(w, r, events, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, events []audit.Event, err error) {
	if err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "read audit trail failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	out := ListResponse{Events: make([]EventResponse, 0, len(events))}
	for _, e := range events {
		resp := EventResponse{
			ID:            e.ID,
			Name:          string(e.Name),
			ActorRole:     string(e.ActorRole),
			Domain:        string(e.Domain),
			ResourceType:  string(e.ResourceType),
			ResourceID:    e.ResourceID,
			Action:        string(e.Action),
			PreviousState: e.PreviousState,
			NewState:      e.NewState,
			Reason:        e.Reason,
			Metadata:      e.Metadata,
			Client:        e.Client,
			Timestamp:     e.Timestamp,
		}
		if !e.ActorID.IsNil() {
			resp.ActorID = e.ActorID.String()
		}
		out.Events = append(out.Events, resp)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
