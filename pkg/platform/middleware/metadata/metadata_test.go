package metadata

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordgate/pkg/requestcontext"
	"recordgate/pkg/testutil"
)

type seen struct {
	requestID string
	tenantID  string
	actor     requestcontext.Actor
	clientIP  string
	at        time.Time
}

func capture(dst *seen) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		*dst = seen{
			requestID: requestcontext.RequestID(ctx),
			tenantID:  requestcontext.TenantID(ctx),
			actor:     requestcontext.ActorFrom(ctx),
			clientIP:  requestcontext.ClientIP(ctx),
			at:        requestcontext.Now(ctx),
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_IdentityHeaders(t *testing.T) {
	var got seen
	req := testutil.NewRequest(t, http.MethodGet, "/v1/contacts")
	req.Header.Set(HeaderRequestID, "req-42")
	req.Header.Set(HeaderTenantID, " t1 ")
	req.Header.Set(HeaderActorID, "u-1")
	req.Header.Set(HeaderActorEmail, "ada@example.com")
	req.Header.Set(HeaderActorRole, "admin")

	before := time.Now()
	rr := testutil.DoRequest(Middleware(capture(&got)), req)

	assert.Equal(t, "req-42", rr.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-42", got.requestID)
	assert.Equal(t, "t1", got.tenantID)
	assert.Equal(t, requestcontext.Actor{ID: "u-1", Email: "ada@example.com", Role: "admin"}, got.actor)
	assert.False(t, got.at.Before(before), "request time is stamped on entry")
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	for name, header := range map[string]string{
		"absent":   "",
		"too long": strings.Repeat("a", maxRequestIDLen+1),
	} {
		t.Run(name, func(t *testing.T) {
			var got seen
			req := testutil.NewRequest(t, http.MethodGet, "/health")
			if header != "" {
				req.Header.Set(HeaderRequestID, header)
			}

			rr := testutil.DoRequest(Middleware(capture(&got)), req)

			require.NotEmpty(t, got.requestID)
			assert.Len(t, got.requestID, 36)
			assert.Equal(t, got.requestID, rr.Header().Get(HeaderRequestID))
			assert.Empty(t, got.tenantID)
			assert.Empty(t, got.actor.Role)
		})
	}
}

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"first forwarded hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.7"},
		{"real ip header", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:80", "198.51.100.4"},
		{"ipv4 remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:5555", "2001:db8::1"},
		{"remote addr without port", nil, "192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/")
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req))
		})
	}
}
