package reqctx

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Package-wide counters. Kept as atomics so the core has no mandatory
// metrics dependency at runtime; Collector adapts them to Prometheus on
// scrape.
var (
	contextsCreated atomic.Uint64
	shallowCopies   atomic.Uint64
	keyCollisions   atomic.Uint64
	dataInstalls    atomic.Uint64
)

// Stats is a point-in-time snapshot of the package counters.
type Stats struct {
	// ContextsCreated counts every Context built by New, Create, and
	// shallow copies.
	ContextsCreated uint64

	// ShallowCopies counts shallow-copy forks.
	ShallowCopies uint64

	// KeyCollisions counts SetData calls that hit an existing key,
	// regardless of whether the warning was throttled.
	KeyCollisions uint64

	// DataInstalls counts successfully installed entries.
	DataInstalls uint64
}

// ReadStats returns a snapshot of the package counters.
func ReadStats() Stats {
	return Stats{
		ContextsCreated: contextsCreated.Load(),
		ShallowCopies:   shallowCopies.Load(),
		KeyCollisions:   keyCollisions.Load(),
		DataInstalls:    dataInstalls.Load(),
	}
}

var (
	descContextsCreated = prometheus.NewDesc(
		"reqctx_contexts_created_total",
		"Request contexts created, including shallow copies.",
		nil, nil,
	)
	descShallowCopies = prometheus.NewDesc(
		"reqctx_shallow_copies_total",
		"Shallow-copy forks of request contexts.",
		nil, nil,
	)
	descKeyCollisions = prometheus.NewDesc(
		"reqctx_key_collisions_total",
		"SetData calls dropped because the key already existed.",
		nil, nil,
	)
	descDataInstalls = prometheus.NewDesc(
		"reqctx_data_installs_total",
		"Request data entries installed.",
		nil, nil,
	)
)

type collector struct{}

// Collector returns a prometheus.Collector exposing the package counters.
// Register it into the application's registry:
//
//	prometheus.MustRegister(reqctx.Collector())
func Collector() prometheus.Collector {
	return collector{}
}

func (collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descContextsCreated
	ch <- descShallowCopies
	ch <- descKeyCollisions
	ch <- descDataInstalls
}

func (collector) Collect(ch chan<- prometheus.Metric) {
	s := ReadStats()

	ch <- prometheus.MustNewConstMetric(descContextsCreated, prometheus.CounterValue, float64(s.ContextsCreated))
	ch <- prometheus.MustNewConstMetric(descShallowCopies, prometheus.CounterValue, float64(s.ShallowCopies))
	ch <- prometheus.MustNewConstMetric(descKeyCollisions, prometheus.CounterValue, float64(s.KeyCollisions))
	ch <- prometheus.MustNewConstMetric(descDataInstalls, prometheus.CounterValue, float64(s.DataInstalls))
}
