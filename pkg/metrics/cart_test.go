package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)

	metrics.IncWrite("cart", "save")
	metrics.IncWrite("cart", "save")
	metrics.IncWrite("kantinInfo", "remove")
	metrics.IncCollapsed()
	metrics.IncLoadFailure()
	metrics.ObserveWriteDuration(40 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_store_writes_total", "record", "cart"); err != nil {
		t.Fatalf("fetch cart writes: %v", err)
	} else if got != 2 {
		t.Fatalf("expected cart writes=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_store_writes_total", "record", "kantinInfo"); err != nil {
		t.Fatalf("fetch vendor writes: %v", err)
	} else if got != 1 {
		t.Fatalf("expected vendor writes=1, got %f", got)
	}

	if got, err := fetchPlainCounterValue(mfs, "cart_debounce_collapsed_total"); err != nil {
		t.Fatalf("fetch collapsed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected collapsed=1, got %f", got)
	}

	if got, err := fetchPlainCounterValue(mfs, "cart_rehydration_failures_total"); err != nil {
		t.Fatalf("fetch load failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected load failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "cart_store_write_duration_seconds"); err != nil {
		t.Fatalf("fetch write duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCartMetricsNormalizesEmptyLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)

	metrics.IncWrite("", "")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cart_store_writes_total", "record", "unknown"); err != nil {
		t.Fatalf("fetch normalized write: %v", err)
	} else if got != 1 {
		t.Fatalf("expected normalized writes=1, got %f", got)
	}
}

func TestCartMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *CartMetrics
	metrics.IncWrite("cart", "save")
	metrics.IncCollapsed()
	metrics.IncLoadFailure()
	metrics.ObserveWriteDuration(time.Millisecond)

	unregistered := NewCartMetrics(nil)
	unregistered.IncWrite("cart", "save")
	unregistered.IncCollapsed()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchPlainCounterValue(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	if len(mf.GetMetric()) == 0 {
		return 0, fmt.Errorf("metric %q has no samples", name)
	}
	return mf.GetMetric()[0].GetCounter().GetValue(), nil
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	if len(mf.GetMetric()) == 0 {
		return 0, fmt.Errorf("histogram %q has no samples", name)
	}
	return mf.GetMetric()[0].GetHistogram().GetSampleSum(), nil
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
