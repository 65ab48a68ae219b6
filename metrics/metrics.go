package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors of the service. All methods are
// safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	Registry         *prometheus.Registry
	ExtractionsTotal *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	FetchErrorsTotal *prometheus.CounterVec
	FieldHitsTotal   *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	extractions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_extractions_total",
			Help: "Job posting extractions by outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobscout_fetch_duration_seconds",
			Help:    "Latency of the outbound page fetch.",
			Buckets: prometheus.DefBuckets,
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_fetch_errors_total",
			Help: "Failed page fetches by error code.",
		},
		[]string{"code"},
	)
	fieldHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_field_hits_total",
			Help: "Extracted fields by the strategy that produced them.",
		},
		[]string{"field", "strategy"},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_cache_lookups_total",
			Help: "Result cache lookups by result (hit or miss).",
		},
		[]string{"result"},
	)

	registry.MustRegister(extractions, fetchDuration, fetchErrors, fieldHits, cacheLookups)

	return &Metrics{
		Registry:         registry,
		ExtractionsTotal: extractions,
		FetchDuration:    fetchDuration,
		FetchErrorsTotal: fetchErrors,
		FieldHitsTotal:   fieldHits,
		CacheLookups:     cacheLookups,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// IncExtraction counts one extraction. outcome is "success", "partial" or
// "failed".
func (m *Metrics) IncExtraction(outcome string) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records the duration of an outbound fetch.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncFetchError counts a failed fetch by error code.
func (m *Metrics) IncFetchError(code string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(code).Inc()
}

// IncFieldHit counts a field recovered by strategy.
func (m *Metrics) IncFieldHit(field, strategy string) {
	if m == nil {
		return
	}
	m.FieldHitsTotal.WithLabelValues(field, strategy).Inc()
}

// IncCacheLookup counts a cache hit or miss.
func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
