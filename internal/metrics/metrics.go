package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reportbot_reports_total",
		Help: "Reports handled, by routing outcome.",
	}, []string{"outcome"})

	fallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reportbot_report_fallbacks_total",
		Help: "Reports where nobody was available and the chat creator was tagged instead.",
	})

	notifiedModerators = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reportbot_notified_moderators",
		Help:    "Number of moderators mentioned per routed report.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	preferenceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reportbot_preference_writes_total",
		Help: "Preference writes from configuration commands, by result.",
	}, []string{"result"})

	storeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reportbot_store_latency_seconds",
		Help:    "Histogram of preference store operation latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveReport records a routing outcome.
func ObserveReport(outcome string) {
	reportsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRouting records how many moderators a routed report mentions.
func ObserveRouting(notified int, fallback bool) {
	notifiedModerators.Observe(float64(notified))
	if fallback {
		fallbacksTotal.Inc()
	}
}

// ObservePreferenceWrite counts a configuration write.
func ObservePreferenceWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	preferenceWrites.WithLabelValues(result).Inc()
}

// ObserveStore records the latency of a store operation started at start.
func ObserveStore(operation string, start time.Time) {
	storeLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
