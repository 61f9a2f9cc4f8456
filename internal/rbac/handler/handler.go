package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/rbac"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

// Handler lets portals ask what the caller may do, so controls can be
// disabled before a request is ever denied.
type Handler struct {
	resolver access.Resolver
	logger   *slog.Logger
}

func New(resolver access.Resolver, logger *slog.Logger) *Handler {
	return &Handler{resolver: resolver, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/me/permissions", h.HandlePermissions)
}

type CheckResponse struct {
	Action   rbac.Action   `json:"action"`
	Resource rbac.Resource `json:"resource"`
	Allowed  bool          `json:"allowed"`
}

type PermissionsResponse struct {
	UserID      string                          `json:"user_id"`
	Role        rbac.Role                       `json:"role"`
	Domain      rbac.Domain                     `json:"domain"`
	Permissions map[rbac.Resource][]rbac.Action `json:"permissions"`
	Check       *CheckResponse                  `json:"check,omitempty"`
}

// HandlePermissions returns the caller's permission set in its domain
// context. With ?action=&resource= it also answers that single check.
func (h *Handler) HandlePermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := access.ViewerFromRequest(w, r, h.resolver, h.logger)
	if !ok {
		return
	}

	resp := PermissionsResponse{
		UserID:      viewer.UserID.String(),
		Role:        viewer.Role,
		Domain:      viewer.Domain,
		Permissions: rbac.Permissions(viewer.Role, viewer.Domain),
	}

	rawAction, rawResource := r.URL.Query().Get("action"), r.URL.Query().Get("resource")
	if rawAction != "" || rawResource != "" {
		action, err := rbac.ParseAction(rawAction)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "action must be a known action"))
			return
		}
		resource, err := rbac.ParseResource(rawResource)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "resource must be a known resource"))
			return
		}
		resp.Check = &CheckResponse{
			Action:   action,
			Resource: resource,
			Allowed:  rbac.HasPermission(viewer.Role, action, resource, viewer.Domain),
		}
		h.logger.DebugContext(ctx, "permission checked",
			"role", viewer.Role,
			"domain", viewer.Domain,
			"action", action,
			"resource", resource,
			"allowed", resp.Check.Allowed,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
