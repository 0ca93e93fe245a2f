package observability

import (
	"strings"
	"testing"
	"time"
)

func TestWritePrometheusIncludesObservedSeries(t *testing.T) {
	m := &Metrics{
		generationRequests: NewCounterVec("cr_generation_requests_total", "h", []string{"provider", "stage", "status"}),
		generationLatency:  NewHistogramVec("cr_generation_duration_seconds", "h", []string{"provider", "stage"}, []float64{1, 5}),
	}
	m.ObserveGeneration("openai", "symptoms", "ok", 2*time.Second)
	m.ObserveGeneration("openai", "symptoms", "invalid", 0)

	var b strings.Builder
	for _, w := range []promWriter{m.generationRequests, m.generationLatency} {
		if err := w.WritePrometheus(&b); err != nil {
			t.Fatalf("WritePrometheus: %v", err)
		}
	}
	out := b.String()
	for _, want := range []string{
		`cr_generation_requests_total{provider="openai",stage="symptoms",status="ok"} 1.000000`,
		`cr_generation_requests_total{provider="openai",stage="symptoms",status="invalid"} 1.000000`,
		`cr_generation_duration_seconds_bucket{provider="openai",stage="symptoms",le="1"} 0`,
		`cr_generation_duration_seconds_bucket{provider="openai",stage="symptoms",le="5"} 1`,
		`cr_generation_duration_seconds_count{provider="openai",stage="symptoms"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.IncNotification("feedback_received", "pushed")
	if err := m.WritePrometheus(&strings.Builder{}); err != nil {
		t.Fatalf("nil metrics write: %v", err)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a"}, []string{"x\"y"})
	if got != `{a="x\"y"}` {
		t.Fatalf("unexpected label string %s", got)
	}
	if ParseHeaders("a=1, b = 2,bad")["b"] != "2" {
		t.Fatalf("ParseHeaders did not trim")
	}
}
