package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/memory/models"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

// Service defines the memory operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, viewer access.Viewer, req *models.CreateRequest) (*models.Memory, error)
	Get(ctx context.Context, viewer access.Viewer, memoryID id.MemoryID) (*models.Memory, error)
	List(ctx context.Context, viewer access.Viewer) ([]*models.Memory, error)
	UpdateSharing(ctx context.Context, viewer access.Viewer, memoryID id.MemoryID, sharing models.Sharing) (*models.Memory, error)
	Delete(ctx context.Context, viewer access.Viewer, memoryID id.MemoryID) error
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
	r.Post("/memories", h.HandleCreate)
	r.Get("/memories", h.HandleList)
	r.Get("/memories/{id}", h.HandleGet)
	r.Put("/memories/{id}/sharing", h.HandleUpdateSharing)
	r.Delete("/memories/{id}", h.HandleDelete)
}

type MemoryResponse struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Sharing   models.Sharing `json:"sharing"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ListResponse struct {
	Memories []MemoryResponse `json:"memories"`
}

func toResponse(m *models.Memory) MemoryResponse {
	return MemoryResponse{
		ID:        m.ID.String(),
		OwnerID:   m.OwnerID.String(),
		Title:     m.Title,
		Body:      m.Body,
		Sharing:   m.Sharing,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
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

	memory, err := h.service.Create(ctx, viewer, req)
	if err != nil {
		h.logger.WarnContext(ctx, "create memory failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(memory))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}

	memories, err := h.service.List(ctx, viewer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := ListResponse{Memories: make([]MemoryResponse, 0, len(memories))}
	for _, m := range memories {
		resp.Memories = append(resp.Memories, toResponse(m))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewer, memoryID, ok := h.prepare(w, r)
	if !ok {
		return
	}
	memory, err := h.service.Get(r.Context(), viewer, memoryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(memory))
}

func (h *Handler) HandleUpdateSharing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewer, memoryID, ok := h.prepare(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.SharingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	memory, err := h.service.UpdateSharing(ctx, viewer, memoryID, req.Sharing)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(memory))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	viewer, memoryID, ok := h.prepare(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), viewer, memoryID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (access.Viewer, id.MemoryID, bool) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return access.Viewer{}, id.MemoryID{}, false
	}
	memoryID, err := id.ParseMemoryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid memory id"))
		return access.Viewer{}, id.MemoryID{}, false
	}
	return viewer, memoryID, true
}
