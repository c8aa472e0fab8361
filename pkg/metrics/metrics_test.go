package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/processor"
	"github.com/vango-dev/vschema/pkg/schema"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestObserveRender(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))

	c.ObserveRender(context.Background(), processor.Stats{
		Elements: 3,
		Skipped:  1,
		FanOuts:  2,
		Duration: time.Millisecond,
		Applied:  map[string]int{"for": 2, "text": 3},
	}, nil)
	c.ObserveRender(context.Background(), processor.Stats{}, fmt.Errorf("boom"))

	tests := []struct {
		name    string
		counter prometheus.Counter
		want    float64
	}{
		{"success", c.rendersTotal.WithLabelValues("success"), 1},
		{"error", c.rendersTotal.WithLabelValues("error"), 1},
		{"constructed", c.nodesTotal.WithLabelValues("constructed"), 3},
		{"skipped", c.nodesTotal.WithLabelValues("skipped"), 1},
		{"fanout", c.nodesTotal.WithLabelValues("fanout"), 2},
		{"for", c.directives.WithLabelValues("for"), 2},
		{"text", c.directives.WithLabelValues("text"), 3},
	}
	for _, tt := range tests {
		if got := counterValue(t, tt.counter); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
	if got := histogramCount(t, c.renderDuration); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
}

func TestReporterCountsCodes(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	collector := &errors.Collector{}
	rep := c.Reporter(collector)

	rep.Report(errors.New("E101"))
	rep.Report(errors.New("E101"))
	rep.Report(fmt.Errorf("plain"))

	if got := counterValue(t, c.diagnostics.WithLabelValues("E101")); got != 2 {
		t.Errorf("E101 = %v, want 2", got)
	}
	if got := counterValue(t, c.diagnostics.WithLabelValues("unknown")); got != 1 {
		t.Errorf("unknown = %v, want 1", got)
	}
	if len(collector.Errors()) != 3 {
		t.Errorf("forwarded %d diagnostics, want 3", len(collector.Errors()))
	}
}

func TestWiredIntoProcessor(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
	engine := expr.New(expr.WithReporter(c.Reporter(nil)))
	r := processor.New(processor.WithEngine(engine), processor.WithObserver(c))

	nodes := []*schema.Node{
		schema.El("p", schema.Attrs{"v-if": "ok"}, schema.Text("yes")),
		schema.El("p", schema.Attrs{"v-if": "1 +"}, schema.Text("broken")),
	}
	if _, err := r.Render(context.Background(), nodes, schema.Context{"ok": true}); err != nil {
		t.Fatal(err)
	}
	if got := counterValue(t, c.directives.WithLabelValues("conditional")); got != 2 {
		t.Errorf("conditional = %v, want 2", got)
	}
	if got := counterValue(t, c.diagnostics.WithLabelValues("E101")); got != 1 {
		t.Errorf("E101 = %v, want 1", got)
	}
}

func TestRecordReload(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	c.RecordReload()
	if got := counterValue(t, c.reloads); got != 1 {
		t.Errorf("reloads = %v, want 1", got)
	}
}
