package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes recorded by RecordReallocationRun.
const (
	RunOutcomeCreated    = "created"
	RunOutcomeDryRun     = "dry_run"
	RunOutcomeNoWork     = "no_work"
	RunOutcomeLocked     = "locked"
	RunOutcomeFailed     = "failed"
	RunOutcomeValidation = "invalid"
)

// MetricsService owns the Prometheus registry for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Observer
	suggestions     prometheus.Counter
	unassigned      prometheus.Counter
	skipped         prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
	runCount       uint64
	createdCount   uint64
}

// MetricsSnapshot is a point-in-time summary of the counters above.
type MetricsSnapshot struct {
	CacheHitRatio      float64   `json:"cache_hit_ratio"`
	ReallocationRuns   uint64    `json:"reallocation_runs"`
	SuggestionsCreated uint64    `json:"suggestions_created"`
	Goroutines         int       `json:"goroutines"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache reads",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reallocation_runs_total",
		Help: "Substitute suggestion runs by outcome",
	}, []string{"outcome"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reallocation_run_duration_seconds",
		Help:    "Wall time of a substitute suggestion run",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	suggestions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reallocation_suggestions_created_total",
		Help: "Suggestions written to the store",
	})

	unassigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reallocation_slots_unassigned_total",
		Help: "Slot occurrences left without a positive-scoring substitute",
	})

	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reallocation_occurrences_skipped_total",
		Help: "Slot occurrences already covered by an earlier suggestion",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		runsTotal, runDuration, suggestions, unassigned, skipped, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		suggestions:     suggestions,
		unassigned:      unassigned,
		skipped:         skipped,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordReallocationRun records the outcome and volume of one run.
func (m *MetricsService) RecordReallocationRun(outcome string, duration time.Duration, created, skipped, unassigned int) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
	if created > 0 {
		m.suggestions.Add(float64(created))
		atomic.AddUint64(&m.createdCount, uint64(created))
	}
	if skipped > 0 {
		m.skipped.Add(float64(skipped))
	}
	if unassigned > 0 {
		m.unassigned.Add(float64(unassigned))
	}
	atomic.AddUint64(&m.runCount, 1)
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)

	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return MetricsSnapshot{
		CacheHitRatio:      ratio,
		ReallocationRuns:   atomic.LoadUint64(&m.runCount),
		SuggestionsCreated: atomic.LoadUint64(&m.createdCount),
		Goroutines:         runtime.NumGoroutine(),
		GeneratedAt:        time.Now().UTC(),
	}
}
