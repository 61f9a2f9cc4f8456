package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/directory/models"
	"elan/internal/directory/service"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

// Service defines the directory operations exposed over HTTP.
type Service interface {
	IssueInvite(ctx context.Context, viewer access.Viewer, req *models.IssueInviteRequest) (*service.IssuedInvite, error)
	AcceptInvite(ctx context.Context, req *models.AcceptInviteRequest) (*models.User, error)
	AssignClients(ctx context.Context, viewer access.Viewer, advisorID id.UserID, req *models.AssignClientsRequest) (*models.User, error)
	GetUser(ctx context.Context, viewer access.Viewer, userID id.UserID) (*models.User, error)
	ListInstitutionUsers(ctx context.Context, viewer access.Viewer) ([]*models.User, error)
}

type Handler struct {
	service  Service
	resolver access.Resolver
	logger   *slog.Logger
}

func New(service Service, resolver access.Resolver, logger *slog.Logger) *Handler {
	return &Handler{service: service, resolver: resolver, logger: logger}
}

// Register mounts the routes that need an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/invites", h.HandleIssueInvite)
	r.Get("/users", h.HandleListUsers)
	r.Get("/users/me", h.HandleMe)
	r.Get("/users/{userID}", h.HandleGetUser)
	r.Put("/users/{userID}/clients", h.HandleAssignClients)
}

// RegisterPublic mounts invite redemption, which runs before the caller has
// an account.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/invites/accept", h.HandleAcceptInvite)
}

type InviteResponse struct {
	InviteID  string    `json:"invite_id"`
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	Domain          string    `json:"domain"`
	PrincipalID     string    `json:"principal_id,omitempty"`
	InstitutionID   string    `json:"institution_id,omitempty"`
	AssignedClients []string  `json:"assigned_clients,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

func toUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Domain:    string(u.Domain()),
		CreatedAt: u.CreatedAt,
	}
	if !u.PrincipalID.IsNil() {
		resp.PrincipalID = u.PrincipalID.String()
	}
	if !u.InstitutionID.IsNil() {
		resp.InstitutionID = u.InstitutionID.String()
	}
	for _, c := range u.AssignedClients {
		resp.AssignedClients = append(resp.AssignedClients, c.String())
	}
	return resp
}

func (h *Handler) HandleIssueInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.IssueInviteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	issued, err := h.service.IssueInvite(ctx, viewer, req)
	if err != nil {
		h.logger.WarnContext(ctx, "issue invite failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, InviteResponse{
		InviteID:  issued.Invite.ID.String(),
		Code:      issued.Code,
		Email:     issued.Invite.Email,
		Role:      string(issued.Invite.Role),
		ExpiresAt: issued.Invite.ExpiresAt,
	})
}

func (h *Handler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.AcceptInviteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.AcceptInvite(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "accept invite failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	h.writeUser(w, r, viewer, viewer.UserID)
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	h.writeUser(w, r, viewer, userID)
}

func (h *Handler) writeUser(w http.ResponseWriter, r *http.Request, viewer access.Viewer, userID id.UserID) {
	user, err := h.service.GetUser(r.Context(), viewer, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	users, err := h.service.ListInstitutionUsers(r.Context(), viewer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := ListUsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleAssignClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}
	advisorID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AssignClientsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.AssignClients(ctx, viewer, advisorID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "assign clients failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
