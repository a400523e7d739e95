// Package internalauth gates internal routes behind a shared secret.
package internalauth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"recordgate/pkg/platform/httputil"
	"recordgate/pkg/requestcontext"
)

// Header carries the shared secret on internal calls.
const Header = "X-Internal-Secret"

// Require rejects requests whose X-Internal-Secret does not match secret.
// An empty secret rejects every request.
func Require(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(Header)
			if secret == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "internal secret mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"secret_configured", secret != "",
				)
				httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthorized, "internal secret required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
