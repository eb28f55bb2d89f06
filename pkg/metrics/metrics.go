// Package metrics exposes Prometheus collectors for node executions.
package metrics

import (
	"net/http"
	"time"

	"github.com/dukex/operion-octagon/pkg/octagon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector records per-item outcomes and Octagon request latency.
// Each Collector owns its registry so tests and binaries never share state.
type Collector struct {
	registry *prometheus.Registry

	itemsTotal      *prometheus.CounterVec
	itemErrorsTotal *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	executionsTotal *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		itemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "octagon_items_total",
				Help: "Total number of items processed by agent and outcome.",
			},
			[]string{"agent", "outcome"},
		),
		itemErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "octagon_item_errors_total",
				Help: "Total number of failed items by agent and error kind.",
			},
			[]string{"agent", "kind"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "octagon_request_duration_seconds",
				Help:    "Duration of Octagon API requests in seconds by agent.",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"agent"},
		),
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "octagon_executions_total",
				Help: "Total number of node executions by node type and status.",
			},
			[]string{"node_type", "status"},
		),
	}

	c.registry.MustRegister(
		c.itemsTotal,
		c.itemErrorsTotal,
		c.requestDuration,
		c.executionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) ItemProcessed(agent string, kind octagon.ErrorKind) {
	if kind == octagon.KindNone {
		c.itemsTotal.WithLabelValues(agent, OutcomeSuccess).Inc()

		return
	}

	c.itemsTotal.WithLabelValues(agent, OutcomeFailure).Inc()
	c.itemErrorsTotal.WithLabelValues(agent, string(kind)).Inc()
}

func (c *Collector) RequestDuration(agent string, d time.Duration) {
	c.requestDuration.WithLabelValues(agent).Observe(d.Seconds())
}

func (c *Collector) ExecutionFinished(nodeType, status string) {
	c.executionsTotal.WithLabelValues(nodeType, status).Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
