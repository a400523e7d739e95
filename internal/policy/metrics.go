package policy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for policy checks.
type Metrics struct {
	Decisions     *prometheus.CounterVec
	CheckDuration prometheus.Histogram
}

// NewMetrics registers policy metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordgate_policy_decisions_total",
			Help: "Policy checks by internal outcome (not_enforced, allowed, denied, unavailable)",
		}, []string{"outcome"}),
		CheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recordgate_policy_check_duration_seconds",
			Help:    "Round-trip time of PDP decision requests",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observe(d decision, seconds float64) {
	m.Decisions.WithLabelValues(d.String()).Inc()
	if d != decisionNotEnforced {
		m.CheckDuration.Observe(seconds)
	}
}
