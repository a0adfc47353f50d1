package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service collectors. It uses its own registry so that
// tests can build several without duplicate registration panics.
type Registry struct {
	reg          *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	assessments  *prometheus.CounterVec
	summaries    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// NewRegistry builds and registers every collector.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellbeing_assessments_total",
			Help: "Computed wellbeing indexes by level and timezone degradation.",
		}, []string{"level", "degraded"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellbeing_summaries_total",
			Help: "Narrative summary attempts by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellbeing_conditions_cache_total",
			Help: "Conditions cache lookups by result.",
		}, []string{"result"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.assessments,
		r.summaries,
		r.cacheLookups,
	)
	return r
}

// Handler serves the exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveHTTP records one served request.
func (r *Registry) ObserveHTTP(route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveAssessment counts a computed index.
func (r *Registry) ObserveAssessment(level string, degraded bool) {
	r.assessments.WithLabelValues(level, strconv.FormatBool(degraded)).Inc()
}

// ObserveSummary counts a narrative summary attempt.
func (r *Registry) ObserveSummary(ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	r.summaries.WithLabelValues(outcome).Inc()
}

// ObserveCache counts a conditions cache lookup.
func (r *Registry) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}
