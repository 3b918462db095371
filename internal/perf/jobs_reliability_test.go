package perf

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/surtidor-erp/surtidor-erp/internal/observability"
)

func TestJobSuccessRatioAboveBudget(t *testing.T) {
	metrics := observability.NewMetrics()

	// Typical overnight mix: mostly successful deliveries with a few retries
	// that eventually fail.
	for i := 0; i < 60; i++ {
		metrics.RecordJob("collections:receipt_notify", "ok")
	}
	for i := 0; i < 3; i++ {
		metrics.RecordJob("collections:receipt_notify", "error")
	}

	families, err := metrics.Gatherer().Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := counterValue(t, families, "surtidor_jobs_total", map[string]string{"task": "collections:receipt_notify", "result": "ok"})
	failure := counterValue(t, families, "surtidor_jobs_total", map[string]string{"task": "collections:receipt_notify", "result": "error"})
	if success+failure == 0 {
		t.Fatal("no job executions recorded")
	}
	ratio := success / (success + failure)
	if ratio < 0.9 {
		t.Fatalf("job success ratio too low: %f", ratio)
	}
}

func counterValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != val {
				return false
			}
		}
	}
	for key := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
