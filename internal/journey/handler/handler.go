package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/journey/models"
	"elan/internal/journey/service"
	"elan/internal/workflow"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

// Service defines the journey operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, viewer access.Viewer, req *models.CreateRequest) (*models.Journey, error)
	Get(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID) (*models.Journey, error)
	List(ctx context.Context, viewer access.Viewer) ([]*models.Journey, error)
	UpdateContent(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID, patch *models.UpdateRequest) (*models.Journey, error)
	AvailableTransitions(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID) ([]workflow.Event, error)
	Transition(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID, event workflow.Event, reason string) (*service.TransitionResult, error)
	UpdateSharing(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID, sharing models.Sharing) (*models.Journey, error)
	Versions(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID) ([]*models.Version, error)
	Delete(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID) error
}

type Handler struct {
	service  Service
	resolver access.Resolver
	logger   *slog.Logger
}

func New(service Service, resolver access.Resolver, logger *slog.Logger) *Handler {
	return &Handler{service: service, resolver: resolver, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/journeys", h.HandleCreate)
	r.Get("/journeys", h.HandleList)
	r.Get("/journeys/{id}", h.HandleGet)
	r.Patch("/journeys/{id}", h.HandleUpdate)
	r.Delete("/journeys/{id}", h.HandleDelete)
	r.Get("/journeys/{id}/transitions", h.HandleAvailableTransitions)
	r.Post("/journeys/{id}/transitions", h.HandleTransition)
	r.Get("/journeys/{id}/versions", h.HandleVersions)
	r.Put("/journeys/{id}/sharing", h.HandleUpdateSharing)
}

// HandleCreate creates a draft journey.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	journey, err := h.service.Create(ctx, viewer, req)
	if err != nil {
		h.logger.WarnContext(ctx, "create journey failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toJourneyResponse(journey))
}

// HandleList returns the journeys visible to the caller.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}

	journeys, err := h.service.List(ctx, viewer)
	if err != nil {
		h.logger.ErrorContext(ctx, "list journeys failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	resp := ListResponse{Journeys: make([]JourneyResponse, 0, len(journeys))}
	for _, j := range journeys {
		resp.Journeys = append(resp.Journeys, toJourneyResponse(j))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, journeyID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	journey, err := h.service.Get(ctx, viewer, journeyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toJourneyResponse(journey))
}

// HandleUpdate patches a draft.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewer, journeyID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	journey, err := h.service.UpdateContent(ctx, viewer, journeyID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "update journey failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toJourneyResponse(journey))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, journeyID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, viewer, journeyID); err != nil {
		h.logger.WarnContext(ctx, "delete journey failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAvailableTransitions lists the events the caller may trigger now.
func (h *Handler) HandleAvailableTransitions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, journeyID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	events, err := h.service.AvailableTransitions(ctx, viewer, journeyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := AvailableTransitionsResponse{Events: make([]string, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, string(e))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleTransition applies a workflow event.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewer, journeyID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Transition(ctx, viewer, journeyID, workflow.Event(req.Event), req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TransitionResponse{
		Journey:  toJourneyResponse(result.Journey),
		Version:  toVersionResponse(result.Version),
		Previous: string(result.Previous),
	})
}

func (h *Handler) HandleVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, journeyID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	versions, err := h.service.Versions(ctx, viewer, journeyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := VersionsResponse{Versions: make([]VersionResponse, 0, len(versions))}
	for _, v := range versions {
		resp.Versions = append(resp.Versions, toVersionResponse(v))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleUpdateSharing replaces the family sharing flags.
func (h *Handler) HandleUpdateSharing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewer, journeyID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.SharingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	journey, err := h.service.UpdateSharing(ctx, viewer, journeyID, req.Sharing)
	if err != nil {
		h.logger.WarnContext(ctx, "update sharing failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toJourneyResponse(journey))
}

// prepare resolves the caller and the {id} path parameter.
func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (access.Viewer, id.JourneyID, bool) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return access.Viewer{}, id.JourneyID{}, false
	}
	journeyID, err := id.ParseJourneyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid journey id"))
		return access.Viewer{}, id.JourneyID{}, false
	}
	return viewer, journeyID, true
}
