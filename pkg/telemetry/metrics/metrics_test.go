package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calculette-hq/mtranspile/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector() *Collector {
	return NewCollector(&config.MetricsConfig{Namespace: "test"}, prometheus.NewRegistry())
}

func TestCollector_NewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(nil, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if collector.config.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("namespace = %q, want default", collector.config.Namespace)
	}
}

func TestCollector_RecordBuild(t *testing.T) {
	collector := newTestCollector()

	collector.RecordBuild(StatusSuccess, "cli", 2*time.Second)
	collector.RecordBuild(StatusError, "fsnotify", time.Second)
	collector.RecordBuild(StatusSuccess, "cli", time.Second)

	builds := collector.buildMetrics.buildsTotal
	if got := testutil.ToFloat64(builds.WithLabelValues(StatusSuccess, "cli")); got != 2 {
		t.Errorf("successful cli builds = %v, want 2", got)
	}
	if got := testutil.ToFloat64(builds.WithLabelValues(StatusError, "fsnotify")); got != 1 {
		t.Errorf("failed fsnotify builds = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.buildMetrics.buildDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(collector.buildMetrics.lastSuccess); got <= 0 {
		t.Error("last success timestamp not set")
	}
}

func TestCollector_RecordPhaseAndFiles(t *testing.T) {
	collector := newTestCollector()

	collector.RecordPhase("translate", 10*time.Millisecond)
	collector.RecordPhase("emit", time.Millisecond)
	collector.RecordFile("rules")
	collector.RecordFile("rules")

	if got := testutil.CollectAndCount(collector.buildMetrics.phaseDuration); got != 2 {
		t.Errorf("phase series = %d, want 2", got)
	}
	if got := testutil.ToFloat64(collector.buildMetrics.filesTotal.WithLabelValues("rules")); got != 2 {
		t.Errorf("rule files = %v, want 2", got)
	}
}

func TestCollector_TranslationMetrics(t *testing.T) {
	collector := newTestCollector()
	tm := collector.translationMetrics

	collector.RecordNodes("symbol", 12)
	collector.RecordNodes("symbol", 3)
	collector.SetFormulas(FormulasOrdered, 40)
	collector.SetFormulas(FormulasOrdered, 42)
	collector.SetVariables("input", 7)
	collector.SetOrderingPasses(3)
	collector.RecordDiagnostic("unresolved_formula_source")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"nodes", testutil.ToFloat64(tm.nodesTotal.WithLabelValues("symbol")), 15},
		{"ordered formulas", testutil.ToFloat64(tm.formulas.WithLabelValues(FormulasOrdered)), 42},
		{"input variables", testutil.ToFloat64(tm.variables.WithLabelValues("input")), 7},
		{"passes", testutil.ToFloat64(tm.orderingPasses), 3},
		{"diagnostics", testutil.ToFloat64(tm.diagnosticsTotal.WithLabelValues("unresolved_formula_source")), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCollector_UnknownFunctionCardinality(t *testing.T) {
	collector := newTestCollector()
	collector.cardinalityLimiter = NewCardinalityLimiter(2)

	collector.RecordUnknownFunction("arr", 2)
	collector.RecordUnknownFunction("inf", 1)
	collector.RecordUnknownFunction("null", 4)
	collector.RecordUnknownFunction("present", 1)

	unknown := collector.translationMetrics.unknownFunctions
	if got := testutil.ToFloat64(unknown.WithLabelValues("arr")); got != 2 {
		t.Errorf("arr = %v, want 2", got)
	}
	if got := testutil.ToFloat64(unknown.WithLabelValues("other")); got != 5 {
		t.Errorf("other = %v, want 5", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(3)
	for i := 0; i < 3; i++ {
		if !limiter.Allow(fmt.Sprintf("v%d", i)) {
			t.Fatalf("value %d rejected below the limit", i)
		}
	}
	if limiter.Allow("v3") {
		t.Error("value accepted above the limit")
	}
	if !limiter.Allow("v0") {
		t.Error("known value rejected")
	}
	if limiter.Count() != 3 {
		t.Errorf("Count() = %d, want 3", limiter.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := newTestCollector()
	collector.RecordBuild(StatusSuccess, "cron", time.Second)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_builds_total{status="success",trigger="cron"} 1`) {
		t.Errorf("builds_total missing from exposition:\n%s", rec.Body.String())
	}
}
