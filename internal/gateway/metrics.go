package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Metrics records gateway traffic. A nil *Metrics records nothing.
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskboard",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Count of API requests by entity kind, operation and outcome",
		}, []string{"kind", "op", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskboard",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of API requests",
			Buckets:   histogramBuckets,
		}, []string{"kind", "op"}),
	}
	if reg == nil {
		return m
	}

	if err := reg.Register(m.requestTotal); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				m.requestTotal = existing
			}
		}
	}
	if err := reg.Register(m.requestDuration); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				m.requestDuration = existing
			}
		}
	}
	return m
}

func (m *Metrics) observe(kind, op string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.With(prometheus.Labels{"kind": kind, "op": op, "outcome": outcome(err)}).Inc()
	m.requestDuration.With(prometheus.Labels{"kind": kind, "op": op}).Observe(took.Seconds())
}
