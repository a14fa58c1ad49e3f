package outbox

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	dispatchTotal   *prometheus.CounterVec
	deadTotal       *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
	pending         prometheus.Gauge
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		dispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waseet",
			Subsystem: "outbox",
			Name:      "dispatch_total",
			Help:      "Total number of notification dispatch attempts.",
		}, []string{"type", "result"}),
		deadTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waseet",
			Subsystem: "outbox",
			Name:      "dead_total",
			Help:      "Total number of notifications given up after the last attempt.",
		}, []string{"type"}),
		dispatchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "waseet",
			Subsystem: "outbox",
			Name:      "dispatch_latency_seconds",
			Help:      "Latency distribution for notification dispatch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"type", "result"}),
		pending: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "waseet",
			Subsystem: "outbox",
			Name:      "pending",
			Help:      "Current number of undelivered notifications.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
