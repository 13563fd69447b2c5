// Package metrics exposes delivery counters on a private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rras-datagen/internal/sink"
)

const namespace = "rras_datagen"

// Collector records what a run delivered.
type Collector struct {
	registry  *prometheus.Registry
	pushed    *prometheus.CounterVec
	failed    *prometheus.CounterVec
	duplicate *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	loans     *prometheus.CounterVec
	npl       prometheus.Counter
	latency   *prometheus.HistogramVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		pushed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_pushed_total",
			Help:      "Records accepted by the sink",
		}, []string{"kind"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_failed_total",
			Help:      "Records the sink rejected or could not receive",
		}, []string{"kind", "transient"}),
		duplicate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_duplicate_total",
			Help:      "Records skipped by the sink as already present",
		}, []string{"kind"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Records not attempted because their parent failed",
		}, []string{"kind"}),
		loans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_generated_total",
			Help:      "Generated loans by asset class",
		}, []string{"asset_class"}),
		npl: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_npl_total",
			Help:      "Generated loans more than 90 days past due",
		}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "push_duration_seconds",
			Help:      "Time taken to deliver one record",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// ObservePush records the outcome of one delivery.
func (c *Collector) ObservePush(res sink.Result, took time.Duration) {
	kind := string(res.Kind)
	c.latency.WithLabelValues(kind).Observe(took.Seconds())
	switch {
	case !res.OK():
		transient := "false"
		if res.Transient() {
			transient = "true"
		}
		c.failed.WithLabelValues(kind, transient).Inc()
	case res.Duplicate:
		c.duplicate.WithLabelValues(kind).Inc()
	default:
		c.pushed.WithLabelValues(kind).Inc()
	}
}

// ObserveSkip counts a record dropped because its parent was not delivered.
func (c *Collector) ObserveSkip(kind string) {
	c.skipped.WithLabelValues(kind).Inc()
}

// ObserveLoan counts a generated loan.
func (c *Collector) ObserveLoan(assetClass string, npl bool) {
	c.loans.WithLabelValues(assetClass).Inc()
	if npl {
		c.npl.Inc()
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
