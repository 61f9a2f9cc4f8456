package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/erasure/service"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

type Service interface {
	EraseUser(ctx context.Context, viewer access.Viewer, userID id.UserID) (*service.Report, error)
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
	r.Delete("/users/{userID}", h.HandleErase)
}

type ErasureResponse struct {
	UserID         string `json:"user_id"`
	Journeys       int    `json:"journeys_deleted"`
	Memories       int    `json:"memories_deleted"`
	Grants         int    `json:"grants_deleted"`
	DirectoryEntry bool   `json:"directory_entry_deleted"`
}

func (h *Handler) HandleErase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	report, err := h.service.EraseUser(ctx, viewer, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "erase user failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ErasureResponse{
		UserID:         report.UserID.String(),
		Journeys:       report.Journeys,
		Memories:       report.Memories,
		Grants:         report.Grants,
		DirectoryEntry: report.DirectoryEntry,
	})
}
