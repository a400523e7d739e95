// Package httptransport assembles the service's HTTP surface. Domain handlers
// register their own routes; this package decides which middleware and auth
// gates each group sits behind.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"recordgate/pkg/platform/httputil"
	"recordgate/pkg/platform/middleware/internalauth"
	"recordgate/pkg/platform/middleware/metadata"
)

// RouteRegistrar mounts a handler's routes on a router.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the pieces the router is built from.
type Deps struct {
	Logger         *slog.Logger
	InternalSecret string
	Metrics        http.Handler
	Instrument     func(http.Handler) http.Handler
	HealthChecks   map[string]HealthCheck
	Internal       []RouteRegistrar
}

// NewRouter wires the public health and metrics endpoints and mounts every
// internal registrar behind the shared-secret gate.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(metadata.Middleware)
	r.Use(chimw.Recoverer)
	if d.Instrument != nil {
		r.Use(d.Instrument)
	}

	r.Get("/health", healthHandler(d.HealthChecks, d.Logger))
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(internalauth.Require(d.InternalSecret, d.Logger))
		for _, reg := range d.Internal {
			reg.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "route not found")
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "check", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
