// Package metrics exposes navigation activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the navigation metrics.
type Collector struct {
	screens  *prometheus.CounterVec
	queries  *prometheus.CounterVec
	syncs    *prometheus.CounterVec
	advances *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them on a fresh registry.
func New() (*Collector, error) {
	reg := prometheus.NewRegistry()
	c := &Collector{
		screens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "casenav_screens_total",
			Help: "Screens returned to callers, by screen type.",
		}, []string{"type"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "casenav_queries_total",
			Help: "Remote query attempts, by outcome (hit, miss, failure).",
		}, []string{"outcome"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "casenav_syncs_total",
			Help: "Remote sync attempts, by result.",
		}, []string{"result"}),
		advances: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "casenav_advance_duration_seconds",
			Help:    "Duration of navigation advances.",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
		gatherer: reg,
	}
	for _, col := range []prometheus.Collector{
		c.screens, c.queries, c.syncs, c.advances,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns navigation hooks feeding the collector.
func (c *Collector) Hooks() domain.NavigationHooks {
	return domain.NavigationHooks{
		OnScreen: func(_ context.Context, e *domain.ScreenEvent) {
			c.screens.WithLabelValues(string(e.Type)).Inc()
		},
		OnQuery: func(_ context.Context, e *domain.QueryEvent) {
			c.queries.WithLabelValues(string(e.Outcome)).Inc()
		},
		OnSync: func(_ context.Context, e *domain.SyncEvent) {
			c.syncs.WithLabelValues(result(e.OK)).Inc()
		},
		OnAdvance: func(_ context.Context, e *domain.AdvanceEvent) {
			c.advances.WithLabelValues(result(e.Err == nil)).Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
