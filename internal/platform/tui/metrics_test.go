package tui

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	return string(body)
}

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded()
	m.RunFinished("collapse")
	m.RunFinished("")
	m.Placement(true)
	m.Placement(true)
	m.Placement(false)
	m.Collapse()
	m.Perfect()

	out := scrape(t, m)
	for _, want := range []string{
		"castle_sessions_total 2",
		"castle_sessions_active 1",
		`castle_runs_total{outcome="collapse"} 1`,
		`castle_runs_total{outcome="unknown"} 1`,
		`castle_placements_total{valid="true"} 2`,
		`castle_placements_total{valid="false"} 1`,
		"castle_collapses_total 1",
		"castle_perfect_settles_total 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionStarted()
	m.SessionEnded()
	m.RunFinished("complete")
	m.Placement(false)
	m.Collapse()
	m.Perfect()
}
