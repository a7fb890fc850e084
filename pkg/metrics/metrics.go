// Package metrics collects and exposes Prometheus metrics for the
// coordination subsystem.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the recording interface used by services and the GC
// sweeper. A nil-safe no-op implementation is available for tests.
type Collector interface {
	RecordLockAcquired()
	RecordLockConflict()
	RecordNotificationCreated()
	RecordItemPublished()
	RecordItemFailed()
	RecordGCRemovals(collection string, count int)
}

type promCollector struct {
	lockAcquired  prometheus.Counter
	lockConflicts prometheus.Counter
	notifications prometheus.Counter
	published     prometheus.Counter
	failed        prometheus.Counter
	gcRemovals    *prometheus.CounterVec
}

// NewCollector registers the subsystem's metrics on the given registry.
func NewCollector(reg prometheus.Registerer) Collector {
	c := &promCollector{
		lockAcquired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pressroom_locks_acquired_total",
			Help: "Total number of content locks acquired.",
		}),
		lockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pressroom_lock_conflicts_total",
			Help: "Total number of lock acquisitions rejected because another editor holds the lock.",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pressroom_notifications_created_total",
			Help: "Total number of notifications created, broadcasts included.",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pressroom_items_published_total",
			Help: "Total number of scheduled items published.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pressroom_items_failed_total",
			Help: "Total number of scheduled item processing failures.",
		}),
		gcRemovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressroom_gc_removals_total",
			Help: "Total number of expired records removed by GC sweeps, per collection.",
		}, []string{"collection"}),
	}

	reg.MustRegister(
		c.lockAcquired,
		c.lockConflicts,
		c.notifications,
		c.published,
		c.failed,
		c.gcRemovals,
	)

	return c
}

func (c *promCollector) RecordLockAcquired()        { c.lockAcquired.Inc() }
func (c *promCollector) RecordLockConflict()        { c.lockConflicts.Inc() }
func (c *promCollector) RecordNotificationCreated() { c.notifications.Inc() }
func (c *promCollector) RecordItemPublished()       { c.published.Inc() }
func (c *promCollector) RecordItemFailed()          { c.failed.Inc() }

func (c *promCollector) RecordGCRemovals(collection string, count int) {
	if count > 0 {
		c.gcRemovals.WithLabelValues(collection).Add(float64(count))
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop returns a collector that records nothing. Used in tests and in
// the one-shot publisher job.
func Noop() Collector { return noopCollector{} }

type noopCollector struct{}

func (noopCollector) RecordLockAcquired()              {}
func (noopCollector) RecordLockConflict()              {}
func (noopCollector) RecordNotificationCreated()       {}
func (noopCollector) RecordItemPublished()             {}
func (noopCollector) RecordItemFailed()                {}
func (noopCollector) RecordGCRemovals(string, int)     {}
