package request

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"elan/pkg/requestcontext"
)

// MaxForwardedHeaderLength bounds X-Forwarded-For parsing.
const MaxForwardedHeaderLength = 500

// ClientMetadata records the caller's IP and User-Agent on the context.
// Forwarding headers are honoured only when the direct peer is a trusted proxy.
func ClientMetadata(trustedProxies []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustedProxies)
			ctx := requestcontext.WithClientMetadata(r.Context(), ip, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil {
		return "unknown"
	}
	if !isTrusted(peerAddr, trusted) {
		return peerAddr.String()
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		forwarded = r.Header.Get("X-Real-IP")
	}
	if forwarded == "" || len(forwarded) > MaxForwardedHeaderLength {
		return peerAddr.String()
	}
	first, _, _ := strings.Cut(forwarded, ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return peerAddr.String()
	}
	return addr.String()
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
