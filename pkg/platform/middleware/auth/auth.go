// Package auth authenticates bearer tokens and places the caller's
// Principal on the request context. It does not authorize: handlers resolve
// the Principal into a viewer and services check permissions.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "elan/pkg/domain"
	"elan/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is the transport-neutral view of an access token.
type Claims struct {
	UserID        string
	Role          string
	Domain        string
	InstitutionID string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// principalFromClaims parses the id claims. Role and Domain stay raw
// strings; they are checked against the directory when the viewer resolves.
func principalFromClaims(claims *Claims) (requestcontext.Principal, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return requestcontext.Principal{}, fmt.Errorf("invalid user_id: %w", err)
	}
	if strings.TrimSpace(claims.Role) == "" {
		return requestcontext.Principal{}, fmt.Errorf("missing role")
	}

	var institutionID id.InstitutionID
	if claims.InstitutionID != "" {
		institutionID, err = id.ParseInstitutionID(claims.InstitutionID)
		if err != nil {
			return requestcontext.Principal{}, fmt.Errorf("invalid institution_id: %w", err)
		}
	}

	return requestcontext.Principal{
		UserID:        userID,
		Role:          claims.Role,
		Domain:        claims.Domain,
		InstitutionID: institutionID,
	}, nil
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the Principal for downstream handlers otherwise.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			principal, err := principalFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}
