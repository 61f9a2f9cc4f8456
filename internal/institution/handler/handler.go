package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/institution/models"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

// Service defines the institution operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, viewer access.Viewer, req *models.CreateRequest) (*models.Institution, error)
	Get(ctx context.Context, viewer access.Viewer, institutionID id.InstitutionID) (*models.Institution, error)
	List(ctx context.Context, viewer access.Viewer) ([]*models.Institution, error)
	Deactivate(ctx context.Context, viewer access.Viewer, institutionID id.InstitutionID) (*models.Institution, error)
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
	r.Post("/institutions", h.HandleCreate)
	r.Get("/institutions", h.HandleList)
	r.Get("/institutions/{institutionID}", h.HandleGet)
	r.Post("/institutions/{institutionID}/deactivate", h.HandleDeactivate)
}

type InstitutionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListResponse struct {
	Institutions []InstitutionResponse `json:"institutions"`
}

func toResponse(inst *models.Institution) InstitutionResponse {
	return InstitutionResponse{
		ID:        inst.ID.String(),
		Name:      inst.Name,
		Status:    string(inst.Status),
		CreatedAt: inst.CreatedAt,
		UpdatedAt: inst.UpdatedAt,
	}
}

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
	inst, err := h.service.Create(ctx, viewer, req)
	if err != nil {
		h.logger.WarnContext(ctx, "create institution failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(inst))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	all, err := h.service.List(r.Context(), viewer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := ListResponse{Institutions: make([]InstitutionResponse, 0, len(all))}
	for _, inst := range all {
		resp.Institutions = append(resp.Institutions, toResponse(inst))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	institutionID, ok := parseInstitutionID(w, r)
	if !ok {
		return
	}
	inst, err := h.service.Get(r.Context(), viewer, institutionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(inst))
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	institutionID, ok := parseInstitutionID(w, r)
	if !ok {
		return
	}
	inst, err := h.service.Deactivate(r.Context(), viewer, institutionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(inst))
}

func parseInstitutionID(w http.ResponseWriter, r *http.Request) (id.InstitutionID, bool) {
	institutionID, err := id.ParseInstitutionID(chi.URLParam(r, "institutionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid institution id"))
		return id.InstitutionID{}, false
	}
	return institutionID, true
}
