package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, e *Exporter) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestExporterExposesMetrics(t *testing.T) {
	e := NewExporter(DefaultConfig())

	e.ObserveLoadScore(42)
	e.ObserveMonitorLatency(0.012)
	e.IncOverloadEvents()
	e.IncMonitorFallbacks()
	e.IncPersonalizationRequests("mission")
	e.IncPersonalizationRequests("mission")
	e.IncFamilyFailures("cognitive_load")

	body := scrape(t, e)

	require.Contains(t, body, "cadence_load_score_count 1")
	require.Contains(t, body, "cadence_load_assessment_latency_seconds_count 1")
	require.Contains(t, body, "cadence_load_overload_events_total 1")
	require.Contains(t, body, "cadence_load_fallbacks_total 1")
	require.Contains(t, body, `cadence_personalize_requests_total{context="mission"} 2`)
	require.Contains(t, body, `cadence_personalize_family_failures_total{family="cognitive_load"} 1`)
}

func TestExporterUsesPrivateRegistry(t *testing.T) {
	// Two exporters must not collide on registration.
	first := NewExporter(DefaultConfig())
	second := NewExporter(DefaultConfig())

	first.IncOverloadEvents()

	require.Contains(t, scrape(t, first), "cadence_load_overload_events_total 1")
	require.Contains(t, scrape(t, second), "cadence_load_overload_events_total 0")
}

func TestExporterCustomLatencyBuckets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LatencyBuckets = []float64{0.1, 0.2}
	e := NewExporter(cfg)

	e.ObserveMonitorLatency(0.15)
	body := scrape(t, e)

	require.Contains(t, body, `cadence_load_assessment_latency_seconds_bucket{le="0.1"} 0`)
	require.Contains(t, body, `cadence_load_assessment_latency_seconds_bucket{le="0.2"} 1`)
	require.False(t, strings.Contains(body, `le="0.005"`))
}
