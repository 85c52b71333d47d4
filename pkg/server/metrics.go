package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/elbader17/sheetrelay/pkg/relay"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetrelay",
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Relay requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sheetrelay",
			Subsystem: "relay",
			Name:      "duration_seconds",
			Help:      "Time spent running the relay pipeline.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *metrics) observe(result relay.Result, elapsed time.Duration) {
	outcome := "success"
	if !result.OK() {
		outcome = result.Kind().String()
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
