package testutil

import (
	"net/http"

	"recordgate/pkg/requestcontext"
)

// WithCaller scopes a request to a tenant and actor, as the metadata
// middleware would for a request carrying the identity headers.
func WithCaller(req *http.Request, tenantID string, actor requestcontext.Actor) *http.Request {
	ctx := requestcontext.WithTenantID(req.Context(), tenantID)
	ctx = requestcontext.WithActor(ctx, actor)
	return req.WithContext(ctx)
}

// WithRequestID attaches a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
