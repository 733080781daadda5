package scope

import "github.com/prometheus/client_golang/prometheus"

// Collector exports store counters to Prometheus. Values are read at scrape
// time, so the hot path only pays for atomic increments.
type Collector struct {
	store *Store

	activeSlots   *prometheus.Desc
	slotsCreated  *prometheus.Desc
	runs          *prometheus.Desc
	runErrors     *prometheus.Desc
	fallbacks     *prometheus.Desc
	fibersSpawned *prometheus.Desc
}

// NewCollector creates a collector for store under the given namespace.
func NewCollector(store *Store, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "scope", name), help, nil, nil)
	}

	return &Collector{
		store:         store,
		activeSlots:   desc("active_slots", "Number of execution units currently holding a context slot."),
		slotsCreated:  desc("slots_created_total", "Context slots allocated on first write."),
		runs:          desc("runs_total", "Scoped executions started."),
		runErrors:     desc("run_errors_total", "Scoped executions whose logic returned an error."),
		fallbacks:     desc("resolver_fallbacks_total", "Identity lookups that fell back to a lower tier after a provider failure."),
		fibersSpawned: desc("fibers_spawned_total", "Fibers spawned on cooperative schedulers."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeSlots
	ch <- c.slotsCreated
	ch <- c.runs
	ch <- c.runErrors
	ch <- c.fallbacks
	ch <- c.fibersSpawned
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.store.Stats()

	ch <- prometheus.MustNewConstMetric(c.activeSlots, prometheus.GaugeValue, float64(st.ActiveSlots))
	ch <- prometheus.MustNewConstMetric(c.slotsCreated, prometheus.CounterValue, float64(st.SlotsCreated))
	ch <- prometheus.MustNewConstMetric(c.runs, prometheus.CounterValue, float64(st.Runs))
	ch <- prometheus.MustNewConstMetric(c.runErrors, prometheus.CounterValue, float64(st.RunErrors))
	ch <- prometheus.MustNewConstMetric(c.fallbacks, prometheus.CounterValue, float64(st.Fallbacks))
	ch <- prometheus.MustNewConstMetric(c.fibersSpawned, prometheus.CounterValue, float64(st.FibersSpawned))
}
