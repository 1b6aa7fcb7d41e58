package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveIngest(models.SeverityCritical, 11)
	m.ObserveIngest(models.SeverityCritical, 12)
	m.ObserveTick(models.SeveritySevere)
	m.ObserveReset(models.SeverityCritical)

	if got := testutil.ToFloat64(m.AlertsIngested.WithLabelValues("Critical")); got != 2 {
		t.Errorf("expected 2 critical ingests, got %v", got)
	}
	if got := testutil.ToFloat64(m.FeedSize); got != 12 {
		t.Errorf("expected feed size 12, got %v", got)
	}
	if got := testutil.ToFloat64(m.TrendTicks.WithLabelValues("Severe")); got != 1 {
		t.Errorf("expected 1 severe tick, got %v", got)
	}
	if got := testutil.ToFloat64(m.TrendResets.WithLabelValues("Critical")); got != 1 {
		t.Errorf("expected 1 critical reset, got %v", got)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// A second instance must not panic on duplicate registration.
	a, b := New(), New()
	a.ObserveTick(models.SeverityCritical)

	if got := testutil.ToFloat64(b.TrendTicks.WithLabelValues("Critical")); got != 0 {
		t.Errorf("expected independent counters, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveIngest(models.SeverityLow, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `dashboard_alerts_ingested_total{severity="Low"} 1`) {
		t.Errorf("metrics output missing ingest counter:\n%s", w.Body.String())
	}
}
