package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric returns the sample of family name whose labels include every
// pair in labels, or nil.
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return m
		}
	}
	return nil
}

func TestRecordGeneration_CountsByTier(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGeneration("generate", "groq")
	c.RecordGeneration("generate", "groq")
	c.RecordGeneration("generate", "bank")

	m := findMetric(t, reg, "crackbano_generation_total", map[string]string{"operation": "generate", "tier": "groq"})
	require.NotNil(t, m)
	assert.Equal(t, 2.0, m.GetCounter().GetValue())

	m = findMetric(t, reg, "crackbano_generation_total", map[string]string{"tier": "bank"})
	require.NotNil(t, m)
	assert.Equal(t, 1.0, m.GetCounter().GetValue())
}

func TestRecordProviderFailureAndLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProviderFailure("gemini", "explain")
	c.RecordProviderLatency("gemini", 1500*time.Millisecond)

	m := findMetric(t, reg, "crackbano_provider_failures_total", map[string]string{"provider": "gemini", "operation": "explain"})
	require.NotNil(t, m)
	assert.Equal(t, 1.0, m.GetCounter().GetValue())

	m = findMetric(t, reg, "crackbano_provider_latency_seconds", map[string]string{"provider": "gemini"})
	require.NotNil(t, m)
	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
	assert.InDelta(t, 1.5, m.GetHistogram().GetSampleSum(), 1e-9)
}

func TestRecordOrphansSwept_IgnoresZero(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOrphansSwept(0)
	c.RecordOrphansSwept(3)

	m := findMetric(t, reg, "crackbano_orphan_questions_swept_total", nil)
	require.NotNil(t, m)
	assert.Equal(t, 3.0, m.GetCounter().GetValue())
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/api/sessions/{id}", http.StatusNotFound, 10*time.Millisecond)

	m := findMetric(t, reg, "crackbano_http_requests_total", map[string]string{
		"method": "GET", "route": "/api/sessions/{id}", "status": "404",
	})
	require.NotNil(t, m)
	assert.Equal(t, 1.0, m.GetCounter().GetValue())
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCacheLookup("hit")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), `crackbano_session_cache_lookups_total{result="hit"} 1`),
		"body should contain the cache lookup sample, got:\n%s", body)
}

func TestNewCollector_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) })
}
