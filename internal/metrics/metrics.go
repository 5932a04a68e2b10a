package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for dispatches and reconciler
// sweeps. A nil *Collector is valid and records nothing.
type Collector struct {
	registry         *prometheus.Registry
	dispatchOutcomes *prometheus.CounterVec
	jobTransitions   *prometheus.CounterVec
	sweepDuration    prometheus.Histogram
}

func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	dispatchOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autopost",
		Subsystem: "dispatch",
		Name:      "outcomes_total",
		Help:      "Publish dispatches by normalized outcome.",
	}, []string{"outcome"})

	jobTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autopost",
		Subsystem: "reconciler",
		Name:      "job_transitions_total",
		Help:      "Scheduled jobs finalized by the reconciler, by terminal status.",
	}, []string{"status"})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "autopost",
		Subsystem: "reconciler",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of reconciliation sweeps.",
		Buckets:   prometheus.DefBuckets,
	})

	for _, c := range []prometheus.Collector{dispatchOutcomes, jobTransitions, sweepDuration} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:         registry,
		dispatchOutcomes: dispatchOutcomes,
		jobTransitions:   jobTransitions,
		sweepDuration:    sweepDuration,
	}, nil
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveDispatch(outcome string) {
	if c == nil {
		return
	}
	c.dispatchOutcomes.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveJobTransition(status string) {
	if c == nil {
		return
	}
	c.jobTransitions.WithLabelValues(status).Inc()
}

func (c *Collector) ObserveSweep(d time.Duration) {
	if c == nil {
		return
	}
	c.sweepDuration.Observe(d.Seconds())
}
