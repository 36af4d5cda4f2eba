package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the counters the wizard reports. A nil *Metrics is valid and
// records nothing, so packages can accept one without requiring it in tests.
type Metrics struct {
	requests      *prometheus.CounterVec
	staleDiscards *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	compatibility *prometheus.CounterVec
	sessions      prometheus.Gauge
}

// NewMetrics registers the wizard collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "batch_composer",
			Name:      "backend_requests_total",
			Help:      "Backend requests issued by wizard sessions, by kind.",
		}, []string{"kind"}),
		staleDiscards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "batch_composer",
			Name:      "stale_responses_discarded_total",
			Help:      "Backend responses dropped because a newer request superseded them or the session closed.",
		}, []string{"kind"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "batch_composer",
			Name:      "submissions_total",
			Help:      "Batch submissions by outcome.",
		}, []string{"outcome"}),
		compatibility: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "batch_composer",
			Name:      "compatibility_checks_total",
			Help:      "Compatibility validations by outcome.",
		}, []string{"outcome"}),
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "batch_composer",
			Name:      "active_sessions",
			Help:      "Wizard sessions currently mounted.",
		}),
	}
}

func (m *Metrics) RequestIssued(kind string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind).Inc()
}

func (m *Metrics) StaleDiscarded(kind string) {
	if m == nil {
		return
	}
	m.staleDiscards.WithLabelValues(kind).Inc()
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Compatibility(outcome string) {
	if m == nil {
		return
	}
	m.compatibility.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}
