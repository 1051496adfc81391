package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTaxonomyMetrics(reg)

	m.ObservePlan("move", 20*time.Millisecond)
	m.IncStep("recompute")
	m.IncStep("recompute")
	m.IncStep("decrement")
	m.IncUnderflow()
	m.IncFailure("")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.steps.WithLabelValues("recompute")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.underflows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("unknown")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	sum, err := fetchHistogramSum(mfs, "bazaar_taxonomy_plan_duration_seconds", "op", "move")
	require.NoError(t, err)
	assert.Greater(t, sum, 0.0)
}

func TestNilRecordersAreNoOps(t *testing.T) {
	var tm *TaxonomyMetrics
	tm.IncUnderflow()
	tm.ObservePlan("create", time.Second)

	unregistered := NewTaxonomyMetrics(nil)
	unregistered.IncStep("increment")

	var hm *HTTPMetrics
	hm.Observe(http.MethodGet, "/products", http.StatusOK, time.Millisecond)
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	hm := NewHTTPMetrics(reg)
	hm.Observe(http.MethodGet, "/products", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bazaar_http_request_duration_seconds_count{method="GET",route="/products",status="200"} 1`)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetHistogram().GetSampleSum(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func TestJobMetricsCountsResultsAndHealedRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)

	m.Result("taxonomy_recount", nil)
	m.Result("taxonomy_recount", fmt.Errorf("boom"))
	m.Healed("taxonomy_recount", 3)
	m.Healed("taxonomy_recount", 0)
	m.ObserveDuration("taxonomy_recount", 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("taxonomy_recount", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("taxonomy_recount", "failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.healed.WithLabelValues("taxonomy_recount")))

	var nilMetrics *JobMetrics
	nilMetrics.Result("x", nil)
	nilMetrics.Healed("x", 1)
}
