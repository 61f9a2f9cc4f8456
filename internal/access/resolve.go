package access

import (
	"context"
	"log/slog"
	"net/http"

	"elan/pkg/platform/httputil"
	"elan/pkg/requestcontext"
)

// Resolver turns the authenticated principal into a Viewer with its
// relationships loaded.
type Resolver interface {
	Viewer(ctx context.Context, principal requestcontext.Principal) (Viewer, error)
}

// ViewerFromRequest resolves the caller of r. On failure it writes the error
// response and returns false.
func ViewerFromRequest(w http.ResponseWriter, r *http.Request, resolver Resolver, logger *slog.Logger) (Viewer, bool) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	principal, err := httputil.RequirePrincipal(ctx, logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return Viewer{}, false
	}
	viewer, err := resolver.Viewer(ctx, principal)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve viewer",
			"error", err,
			"user_id", principal.UserID.String(),
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return Viewer{}, false
	}
	return viewer, true
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, principal requestcontext.Principal) (Viewer, error)

func (f ResolverFunc) Viewer(ctx context.Context, principal requestcontext.Principal) (Viewer, error) {
	return f(ctx, principal)
}
