// Package metrics collects Prometheus metrics and serves /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the gateway, cache, sweep and HTTP middleware report to.
// Collector is the Prometheus implementation; Nop discards everything.
type Recorder interface {
	// RecordGeneration counts one answered generate/explain call by the tier
	// that produced it (a provider name, "bank", "canned" or "template").
	RecordGeneration(operation, tier string)
	RecordProviderFailure(provider, operation string)
	RecordProviderLatency(provider string, d time.Duration)
	// RecordCacheLookup counts session cache results: hit, miss or error.
	RecordCacheLookup(result string)
	RecordOrphansSwept(n int64)
	RecordHTTPRequest(method, route string, status int, d time.Duration)
}

// Collector registers and updates the crackbano_* metrics.
type Collector struct {
	generations      *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	orphansSwept     prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
// It panics if any metric is already registered there.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crackbano_generation_total",
			Help: "AI gateway calls answered, by operation and the tier that answered.",
		}, []string{"operation", "tier"}),
		providerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crackbano_provider_failures_total",
			Help: "Provider calls that failed and fell through to the next tier.",
		}, []string{"provider", "operation"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crackbano_provider_latency_seconds",
			Help:    "Provider call latency in seconds, successful or not.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30},
		}, []string{"provider"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crackbano_session_cache_lookups_total",
			Help: "Session cache lookups by result.",
		}, []string{"result"}),
		orphansSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crackbano_orphan_questions_swept_total",
			Help: "Questions deleted by the orphan sweep.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crackbano_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crackbano_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.generations,
		c.providerFailures,
		c.providerLatency,
		c.cacheLookups,
		c.orphansSwept,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) RecordGeneration(operation, tier string) {
	c.generations.WithLabelValues(operation, tier).Inc()
}

func (c *Collector) RecordProviderFailure(provider, operation string) {
	c.providerFailures.WithLabelValues(provider, operation).Inc()
}

func (c *Collector) RecordProviderLatency(provider string, d time.Duration) {
	c.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

func (c *Collector) RecordCacheLookup(result string) {
	c.cacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordOrphansSwept(n int64) {
	if n > 0 {
		c.orphansSwept.Add(float64(n))
	}
}

// RecordHTTPRequest takes the chi route pattern, not the raw path, so ids
// do not blow up label cardinality.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the metrics gathered by gatherer in the Prometheus text
// format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that records nothing. Tests and tools that do not
// expose /metrics use it.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordGeneration(string, string) {}
func (Nop) RecordProviderFailure(string, string) {}
func (Nop) RecordProviderLatency(string, time.Duration) {}
func (Nop) RecordCacheLookup(string) {}
func (Nop) RecordOrphansSwept(int64) {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
