package metrics

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgtestutil "recordgate/pkg/testutil"
)

func TestHTTPMiddleware_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTP(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/{resource}/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		pkgtestutil.DoRequest(r, pkgtestutil.NewRequest(t, http.MethodGet, "/v1/contacts/"+id))
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration), "ids must not create new series")
	count, err := testutil.GatherAndCount(reg, "recordgate_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewHTTP(reg).RequestDuration.WithLabelValues("GET", "/health", "200").Observe(0.01)

	rr := pkgtestutil.DoRequest(Handler(reg), pkgtestutil.NewRequest(t, http.MethodGet, "/metrics"))

	pkgtestutil.AssertStatusOK(t, rr)
	body := rr.Body.String()
	assert.Contains(t, body, "recordgate_http_request_duration_seconds_count")
	assert.Contains(t, body, "go_goroutines")
}
