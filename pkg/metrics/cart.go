package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart persistence activity.
type CartMetrics struct {
	writes        *prometheus.CounterVec
	collapsed     prometheus.Counter
	loadFailures  prometheus.Counter
	writeDuration prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_store_writes_total",
		Help: "Cart record writes by record and operation.",
	}, []string{"record", "op"})
	collapsed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_debounce_collapsed_total",
		Help: "Mutations coalesced into an already-pending persistence write.",
	})
	loadFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_rehydration_failures_total",
		Help: "Stored cart records that failed to parse during rehydration.",
	})
	writeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_store_write_duration_seconds",
		Help:    "Duration of cart record store writes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(writes, collapsed, loadFailures, writeDuration)
	return &CartMetrics{
		writes:        writes,
		collapsed:     collapsed,
		loadFailures:  loadFailures,
		writeDuration: writeDuration,
	}
}

// IncWrite counts one store write for the given record and operation.
func (c *CartMetrics) IncWrite(record, op string) {
	if c == nil || c.writes == nil {
		return
	}
	c.writes.WithLabelValues(normalizeLabel(record), normalizeLabel(op)).Inc()
}

// IncCollapsed counts a mutation that landed inside the debounce window.
func (c *CartMetrics) IncCollapsed() {
	if c == nil || c.collapsed == nil {
		return
	}
	c.collapsed.Inc()
}

// IncLoadFailure counts a malformed stored record seen during rehydration.
func (c *CartMetrics) IncLoadFailure() {
	if c == nil || c.loadFailures == nil {
		return
	}
	c.loadFailures.Inc()
}

// ObserveWriteDuration records how long a store write took.
func (c *CartMetrics) ObserveWriteDuration(duration time.Duration) {
	if c == nil || c.writeDuration == nil {
		return
	}
	c.writeDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
