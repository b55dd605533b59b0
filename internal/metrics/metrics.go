// Package metrics exposes the process-wide prometheus counters that
// internal/orchestrate and internal/trailstore report against: search
// tree nodes visited per stage, trail cores found per generator, and
// trail-core records appended to and deduplicated in the store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters is a self-contained set of prometheus counters registered
// against their own registry, rather than the global default
// registerer, so a test or a second run within the same process can
// construct more than one without a duplicate-registration panic.
type Counters struct {
	Registry *prometheus.Registry

	NodesVisited    *prometheus.CounterVec
	TrailCoresFound *prometheus.CounterVec
	RecordsAppended prometheus.Counter
	RecordsUnique   prometheus.Counter
}

// New registers and returns a fresh set of counters.
func New() *Counters {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Counters{
		Registry: registry,

		NodesVisited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trailcore_search_nodes_visited_total",
			Help: "number of search tree nodes visited, by stage",
		}, []string{"stage"}),

		TrailCoresFound: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trailcore_trail_cores_found_total",
			Help: "number of 3-round trail cores found, by generator",
		}, []string{"generator"}),

		RecordsAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "trailcore_store_records_appended_total",
			Help: "number of trail-core records appended to the stream",
		}),

		RecordsUnique: factory.NewCounter(prometheus.CounterOpts{
			Name: "trailcore_store_records_unique_total",
			Help: "number of trail-core records that were new after canonical deduplication",
		}),
	}
}

// VisitNode records one search tree node visited during stage.
func (c *Counters) VisitNode(stage string) {
	if c == nil {
		return
	}
	c.NodesVisited.WithLabelValues(stage).Inc()
}

// FoundTrailCore records one trail core produced by generator.
func (c *Counters) FoundTrailCore(generator string) {
	if c == nil {
		return
	}
	c.TrailCoresFound.WithLabelValues(generator).Inc()
}

// AppendedRecord records one trail-core record appended to a store.
func (c *Counters) AppendedRecord() {
	if c == nil {
		return
	}
	c.RecordsAppended.Inc()
}

// UniqueRecord records one trail-core record found new by a canonical
// deduplication pass.
func (c *Counters) UniqueRecord() {
	if c == nil {
		return
	}
	c.RecordsUnique.Inc()
}
