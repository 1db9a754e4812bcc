package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec
	hintsIssuedTotal  *prometheus.CounterVec
	reportsTotal      *prometheus.CounterVec
	feedClientsActive prometheus.Gauge
	resumeUploads     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_requests_total",
			Help: "Total number of interview API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interview_latency_seconds",
			Help:    "Latency distribution for interview API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_errors_total",
			Help: "Total number of error responses returned by interview endpoints.",
		}, []string{"method", "route", "status"})

		hintsIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_hints_issued_total",
			Help: "Number of progressive hints issued, by escalation level.",
		}, []string{"level"})

		reportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_reports_total",
			Help: "Number of grading report requests, by outcome.",
		}, []string{"outcome"})

		feedClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "interview_feed_clients_active",
			Help: "Number of websocket feed subscribers currently connected.",
		})

		resumeUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_resume_uploads_total",
			Help: "Number of resume upload attempts, by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, hintsIssuedTotal, reportsTotal, feedClientsActive, resumeUploads)
	})
}

// APIRequests exposes the counter for interview API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for interview API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for interview API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// HintsIssued exposes the counter of issued hints.
func HintsIssued() *prometheus.CounterVec {
	RegisterMetrics()
	return hintsIssuedTotal
}

// Reports exposes the counter of report generations.
func Reports() *prometheus.CounterVec {
	RegisterMetrics()
	return reportsTotal
}

// FeedClients exposes the gauge of connected feed subscribers.
func FeedClients() prometheus.Gauge {
	RegisterMetrics()
	return feedClientsActive
}

// ResumeUploads exposes the counter of resume upload attempts.
func ResumeUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return resumeUploads
}
