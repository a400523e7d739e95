package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit writes. Failed writes are only
// visible here and in the operational log.
type Metrics struct {
	Written  *prometheus.CounterVec
	Failures *prometheus.CounterVec
}

// NewMetrics registers audit metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Written: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordgate_audit_events_written_total",
			Help: "Audit rows persisted, by normalized result",
		}, []string{"result"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordgate_audit_write_failures_total",
			Help: "Audit rows dropped, by failure reason",
		}, []string{"reason"}),
	}
}

// IncWritten increments the written counter for result.
func (m *Metrics) IncWritten(result Result) {
	m.Written.WithLabelValues(string(result)).Inc()
}

// IncFailure increments the failure counter for reason.
func (m *Metrics) IncFailure(reason string) {
	m.Failures.WithLabelValues(reason).Inc()
}
