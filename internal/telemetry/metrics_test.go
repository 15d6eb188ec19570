package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatal(err)
	}
	return metric.GetCounter().GetValue()
}

func TestNewMetricsWith(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg)

	if m.RequestTotal == nil {
		t.Error("RequestTotal should not be nil")
	}
	if m.UpstreamFetchTotal == nil {
		t.Error("UpstreamFetchTotal should not be nil")
	}
	if m.CompletionDurationMs == nil {
		t.Error("CompletionDurationMs should not be nil")
	}
	if m.RateLimitHitsTotal == nil {
		t.Error("RateLimitHitsTotal should not be nil")
	}

	// Vec collectors only show up once a label set has been observed.
	m.RecordRequest(RequestLabels{Intent: "general", Status: "200", DurationMs: 10})
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "assistant_request_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected assistant_request_total to be registered")
	}
}

func TestRecordRequest(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordRequest(RequestLabels{Intent: "schedule", Status: "200", DurationMs: 150})
	m.RecordRequest(RequestLabels{Intent: "schedule", Status: "200", DurationMs: 90})

	if got := counterValue(t, m.RequestTotal, "schedule", "200"); got != 2 {
		t.Errorf("expected request count 2, got %v", got)
	}
}

func TestRecordUpstreamFetch(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordUpstreamFetch("grades", "error", 12)
	m.RecordUpstreamFetch("grades", "ok", 8)
	m.RecordUpstreamFetch("grades", "ok", 9)

	if got := counterValue(t, m.UpstreamFetchTotal, "grades", "ok"); got != 2 {
		t.Errorf("expected 2 ok fetches, got %v", got)
	}
	if got := counterValue(t, m.UpstreamFetchTotal, "grades", "error"); got != 1 {
		t.Errorf("expected 1 failed fetch, got %v", got)
	}
}

func TestRecordFilterAction(t *testing.T) {
	filterTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_filter_action",
		Help: "Test",
	}, []string{"filter", "action"})

	m := &Metrics{FilterActionTotal: filterTotal}
	m.RecordFilterAction("injection", "block")

	if got := counterValue(t, filterTotal, "injection", "block"); got != 1 {
		t.Errorf("expected filter action count 1, got %v", got)
	}
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	m.RecordRequest(RequestLabels{Intent: "general"})
	m.RecordUpstreamFetch("profile", "ok", 1)
	m.RecordCompletion("openai", "200", 1)
	m.RecordFilterAction("injection", "pass")
	m.RecordRateLimitHit("subject")
}
