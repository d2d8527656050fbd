package session

import "github.com/prometheus/client_golang/prometheus"

// Collector exports MemoryStore statistics as Prometheus metrics.
type Collector struct {
	store interface{ Stats() StoreStats }

	active  *prometheus.Desc
	created *prometheus.Desc
	removed *prometheus.Desc
	expired *prometheus.Desc
	corrupt *prometheus.Desc
	running *prometheus.Desc
}

// NewCollector returns a collector reading from store. Metric names are
// prefixed with namespace when it is not empty.
func NewCollector(store interface{ Stats() StoreStats }, namespace string) *Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "sessions", n)
	}
	return &Collector{
		store:   store,
		active:  prometheus.NewDesc(name("active"), "Number of sessions currently held by the store.", nil, nil),
		created: prometheus.NewDesc(name("created_total"), "Total number of sessions stored for the first time.", nil, nil),
		removed: prometheus.NewDesc(name("removed_total"), "Total number of sessions removed explicitly.", nil, nil),
		expired: prometheus.NewDesc(name("expired_total"), "Total number of sessions evicted by the reaper after their timeout.", nil, nil),
		corrupt: prometheus.NewDesc(name("corrupt_total"), "Total number of undecodable sessions dropped by the reaper.", nil, nil),
		running: prometheus.NewDesc(name("reaper_running"), "Whether the expiry reaper is running (1) or not (0).", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.created
	ch <- c.removed
	ch <- c.expired
	ch <- c.corrupt
	ch <- c.running
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.store.Stats()

	running := 0.0
	if stats.Running {
		running = 1
	}

	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(stats.Active))
	ch <- prometheus.MustNewConstMetric(c.created, prometheus.CounterValue, float64(stats.Created))
	ch <- prometheus.MustNewConstMetric(c.removed, prometheus.CounterValue, float64(stats.Removed))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.CounterValue, float64(stats.Expired))
	ch <- prometheus.MustNewConstMetric(c.corrupt, prometheus.CounterValue, float64(stats.Corrupt))
	ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, running)
}
