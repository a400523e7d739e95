// Package metadata lifts request identity and client details out of HTTP
// headers into requestcontext, so downstream code never reads headers.
package metadata

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"recordgate/pkg/requestcontext"
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderTenantID   = "X-Tenant-ID"
	HeaderActorID    = "X-Actor-ID"
	HeaderActorEmail = "X-Actor-Email"
	HeaderActorRole  = "X-Actor-Role"

	maxRequestIDLen = 128
)

// Middleware stores the request ID, client IP, tenant, actor and request
// time in the context. The request ID is echoed on the response; one is
// generated when the caller did not send a usable value.
// This middleware should be applied first in the chain.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		ctx = requestcontext.WithClientIP(ctx, ClientIPFromRequest(r))
		if tenantID := strings.TrimSpace(r.Header.Get(HeaderTenantID)); tenantID != "" {
			ctx = requestcontext.WithTenantID(ctx, tenantID)
		}
		ctx = requestcontext.WithActor(ctx, requestcontext.Actor{
			ID:    strings.TrimSpace(r.Header.Get(HeaderActorID)),
			Email: strings.TrimSpace(r.Header.Get(HeaderActorEmail)),
			Role:  strings.TrimSpace(r.Header.Get(HeaderActorRole)),
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For is "client, proxy1, proxy2"; the first entry is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return ""
}
