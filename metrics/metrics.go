// Package metrics exposes prometheus collectors for the ballot engine.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zkballot"

// Result labels of an operation.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	votes        prometheus.Counter
	verification *prometheus.HistogramVec
}

// New creates the collectors and registers them, along with the Go runtime
// collectors, in a new registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of applied operations by name and result",
		}, []string{"operation", "result"}),
		votes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Number of votes counted",
		}),
		verification: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "proof_verification_seconds",
			Help:      "Duration of range proof verifications",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"result"}),
	}
	var errs []error
	for _, c := range []prometheus.Collector{
		m.operations,
		m.votes,
		m.verification,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		errs = append(errs, m.registry.Register(c))
	}
	return m, errors.Join(errs...)
}

// Registry returns the registry of the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOperation counts an operation as ok or failed depending on err.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// VoteCast counts a vote.
func (m *Metrics) VoteCast() {
	if m == nil {
		return
	}
	m.votes.Inc()
}

// ObserveVerification records the outcome and duration of a proof
// verification.
func (m *Metrics) ObserveVerification(ok bool, took time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if !ok {
		result = ResultError
	}
	m.verification.WithLabelValues(result).Observe(took.Seconds())
}

// RegisterCacheStats exports the hit and miss counters returned by stats.
func (m *Metrics) RegisterCacheStats(name string, stats func() (hits, misses uint64)) error {
	if m == nil {
		return nil
	}
	hits := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_hits_total",
		Help:        "Number of cache hits",
		ConstLabels: prometheus.Labels{"cache": name},
	}, func() float64 {
		h, _ := stats()
		return float64(h)
	})
	misses := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_misses_total",
		Help:        "Number of cache misses",
		ConstLabels: prometheus.Labels{"cache": name},
	}, func() float64 {
		_, mi := stats()
		return float64(mi)
	})
	return errors.Join(m.registry.Register(hits), m.registry.Register(misses))
}
