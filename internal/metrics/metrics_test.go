package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CompressionSkipped("timeout")
	m.CompressionSkipped("timeout")
	m.LLMRequest("stream", "ok")
	m.Action("create_po", "pending")
	m.StockUpdate("sale", "rejected")
	m.TrackingLookup("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	cases := []struct {
		name         string
		label, value string
		want         float64
	}{
		{"assistant_compression_skipped_total", "reason", "timeout", 2},
		{"assistant_llm_requests_total", "mode", "stream", 1},
		{"assistant_actions_total", "outcome", "pending", 1},
		{"stock_updates_total", "movement_type", "sale", 1},
		{"tracking_lookups_total", "source", "unknown", 1},
	}
	for _, tc := range cases {
		got, err := fetchCounterValue(mfs, tc.name, tc.label, tc.value)
		if err != nil {
			t.Fatalf("fetch %s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("expected %s=%v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CompressionSkipped("no_key")
	m.StockUpdate("sale", "ok")

	New(nil).TrackingLookup("mock")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return metric.GetCounter().GetValue(), nil
				}
			}
		}
		return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
	}
	return 0, fmt.Errorf("metric %q not found", name)
}
