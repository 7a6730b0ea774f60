package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCollectorRecordsPipelineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewTrackerCollector(reg)
	if err != nil {
		t.Fatalf("NewTrackerCollector: %v", err)
	}

	collector.AddProcessed(12)
	collector.IncDropped("unresolvable")
	collector.IncDropped("unresolvable")
	collector.IncDropped("unpropagatable")
	collector.ObservePassDuration(15 * time.Millisecond)

	if got := testutil.ToFloat64(collector.ObjectsProcessed); got != 12 {
		t.Fatalf("tracker_objects_processed_total = %v, want 12", got)
	}
	if got := counterValue(t, reg, "tracker_records_dropped_total", map[string]string{"reason": "unresolvable"}); got != 2 {
		t.Fatalf("tracker_records_dropped_total{unresolvable} = %v, want 2", got)
	}
	if got := counterValue(t, reg, "tracker_records_dropped_total", map[string]string{"reason": "unpropagatable"}); got != 1 {
		t.Fatalf("tracker_records_dropped_total{unpropagatable} = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "tracker_pass_duration_seconds"); count != 1 {
		t.Fatalf("tracker_pass_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestCollectorIsIdempotentPerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewTrackerCollector(reg)
	if err != nil {
		t.Fatalf("first NewTrackerCollector: %v", err)
	}
	second, err := NewTrackerCollector(reg)
	if err != nil {
		t.Fatalf("second NewTrackerCollector: %v", err)
	}

	first.AddProcessed(1)
	second.AddProcessed(1)
	if got := testutil.ToFloat64(first.ObjectsProcessed); got != 2 {
		t.Fatalf("expected both collectors to share the registered counter, got %v", got)
	}
}

func TestMetricsHandlerExposesCatalogGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewTrackerCollector(reg)
	if err != nil {
		t.Fatalf("NewTrackerCollector: %v", err)
	}
	collector.SetCatalogCounts(120, 117)
	collector.SetCacheStats(120, 3)
	collector.SetReentryCount(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"catalog_records",
		"catalog_objects",
		"tracker_cache_entries",
		"tracker_cache_unresolvable",
		"tracker_reentry_objects",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func counterValue(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if h := m.GetHistogram(); h != nil {
				return h.GetSampleCount()
			}
		}
	}
	return 0
}
