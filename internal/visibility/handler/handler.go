package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/visibility/models"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

// Service defines the visibility operations exposed over HTTP.
type Service interface {
	Grant(ctx context.Context, viewer access.Viewer, req *models.GrantRequest) (*models.Grant, error)
	Revoke(ctx context.Context, viewer access.Viewer, advisorID id.UserID) (*models.Grant, error)
	List(ctx context.Context, viewer access.Viewer) ([]*models.Grant, error)
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
	r.Get("/visibility/grants", h.HandleList)
	r.Post("/visibility/grants", h.HandleGrant)
	r.Delete("/visibility/grants/{advisorID}", h.HandleRevoke)
}

type GrantResponse struct {
	AdvisorID string     `json:"advisor_id"`
	All       bool       `json:"all"`
	EntityIDs []string   `json:"entity_ids,omitempty"`
	Status    string     `json:"status"`
	GrantedAt time.Time  `json:"granted_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

type ListResponse struct {
	Grants []GrantResponse `json:"grants"`
}

func toResponse(g *models.Grant) GrantResponse {
	return GrantResponse{
		AdvisorID: g.AdvisorID.String(),
		All:       g.All,
		EntityIDs: g.EntityIDs,
		Status:    string(g.Status()),
		GrantedAt: g.GrantedAt,
		RevokedAt: g.RevokedAt,
	}
}

func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.GrantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	grant, err := h.service.Grant(ctx, viewer, req)
	if err != nil {
		h.logger.WarnContext(ctx, "grant visibility failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(grant))
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	advisorID, err := id.ParseUserID(chi.URLParam(r, "advisorID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid advisor id"))
		return
	}

	grant, err := h.service.Revoke(ctx, viewer, advisorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(grant))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	grants, err := h.service.List(r.Context(), viewer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := ListResponse{Grants: make([]GrantResponse, 0, len(grants))}
	for _, g := range grants {
		resp.Grants = append(resp.Grants, toResponse(g))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
