// Package prom exports dictionary lookup metrics to Prometheus.
package prom

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jmurray2011/lexicon/internal/dictionary"
)

// Adapter implements dictionary.Metrics and exports Prometheus counters,
// gauges and a latency histogram. All Prometheus metric types are
// goroutine-safe, so an Adapter may be shared by concurrent lookups.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	evicts  prometheus.Counter
	size    prometheus.Gauge
	latency *prometheus.HistogramVec
	failed  *prometheus.CounterVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "cache_hits_total",
			Help:        "Lookups answered from the cache",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "cache_misses_total",
			Help:        "Lookups that fell through to the source",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "cache_evictions_total",
			Help:        "Records evicted from the cache",
			ConstLabels: constLabels,
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "cache_size_entries",
			Help:        "Number of resident records",
			ConstLabels: constLabels,
		}),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "source_latency_seconds",
				Help:        "Source lookup latency by tier",
				Buckets:     prometheus.ExponentialBuckets(0.0005, 4, 8),
				ConstLabels: constLabels,
			},
			[]string{"tier"},
		),
		failed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "source_errors_total",
				Help:        "Source lookups that failed, by tier and kind",
				ConstLabels: constLabels,
			},
			[]string{"tier", "kind"},
		),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.size, a.latency, a.failed)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Size updates the resident entry gauge.
func (a *Adapter) Size(entries int) { a.size.Set(float64(entries)) }

// SourceLatency observes d for tier and counts failures by kind.
func (a *Adapter) SourceLatency(tier dictionary.Tier, d time.Duration, err error) {
	a.latency.WithLabelValues(string(tier)).Observe(d.Seconds())
	if err != nil {
		a.failed.WithLabelValues(string(tier), kind(err)).Inc()
	}
}

// kind maps a source error to a stable label value.
func kind(err error) string {
	switch {
	case errors.Is(err, dictionary.ErrSourceUnavailable):
		return "unavailable"
	case errors.Is(err, dictionary.ErrNotFound):
		return "not_found"
	case errors.Is(err, dictionary.ErrInvalidRecord):
		return "invalid"
	default:
		return "other"
	}
}

// Compile-time check: ensure Adapter implements dictionary.Metrics.
var _ dictionary.Metrics = (*Adapter)(nil)
