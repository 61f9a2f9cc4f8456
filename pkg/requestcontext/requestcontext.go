// Package requestcontext carries request-scoped values (request id, caller
// identity, client metadata and request time) through context.Context.
//
// Values are written once by middleware and read by handlers. Services never
// read caller identity from here; handlers resolve it and pass it explicitly.
package requestcontext

import (
	"context"
	"time"

	id "elan/pkg/domain"
)

type (
	requestIDKey   struct{}
	principalKey   struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestTimeKey struct{}
)

// Principal is the authenticated caller as asserted by the bearer token.
// Role and Domain are kept as raw strings so this package stays free of
// domain imports; the rbac package parses them at the handler boundary.
type Principal struct {
	UserID        id.UserID
	Role          string
	Domain        string
	InstitutionID id.InstitutionID
}

// WithRequestID stores the correlation id for the request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation id or "" when absent.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithPrincipal stores the authenticated caller.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID.IsNil() {
		return Principal{}, false
	}
	return p, true
}

// UserID returns the authenticated user id or the nil id.
func UserID(ctx context.Context) id.UserID {
	p, _ := PrincipalFrom(ctx)
	return p.UserID
}

// WithClientMetadata stores the caller IP and User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientIP returns the client IP extracted by the metadata middleware.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent returns the raw User-Agent header.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithTime pins "now" for the request so every timestamp written while
// serving it agrees.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the request-scoped time, falling back to the wall clock for
// workers, CLIs and tests that never ran the middleware.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
