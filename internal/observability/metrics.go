package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsight_http_requests_total",
			Help: "Total number of HTTP requests by route pattern.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridsight_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "route", "status"},
	)
	modelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsight_model_calls_total",
			Help: "Total number of text-generation calls by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	modelCallLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridsight_model_call_latency_seconds",
			Help:    "Text-generation round-trip latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider"},
	)
	diagnosticAnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsight_diagnostic_answers_total",
			Help: "Requests answered with an in-band backend error.",
		},
		[]string{"endpoint"},
	)
	rowsTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gridsight_rows_truncated_total",
			Help: "Input rows dropped because they exceeded the sample bound.",
		},
	)
	columnsClassifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsight_columns_classified_total",
			Help: "Columns classified, by assigned type label.",
		},
		[]string{"label"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		modelCallsTotal,
		modelCallLatencySeconds,
		diagnosticAnswersTotal,
		rowsTruncatedTotal,
		columnsClassifiedTotal,
	)
}

// routeLabel is the matched mux pattern, or "unmatched" when no route was
// matched.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

func ObserveModelCall(provider string, ok bool, elapsed time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	modelCallsTotal.WithLabelValues(provider, outcome).Inc()
	modelCallLatencySeconds.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func IncrementDiagnosticAnswer(endpoint string) {
	diagnosticAnswersTotal.WithLabelValues(endpoint).Inc()
}

func AddTruncatedRows(dropped int) {
	if dropped > 0 {
		rowsTruncatedTotal.Add(float64(dropped))
	}
}

func ObserveColumnLabel(label string) {
	columnsClassifiedTotal.WithLabelValues(label).Inc()
}
