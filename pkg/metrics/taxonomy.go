package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TaxonomyMetrics records the work done by the taxonomy counter engine.
type TaxonomyMetrics struct {
	planDuration *prometheus.HistogramVec
	steps        *prometheus.CounterVec
	underflows   prometheus.Counter
	failures     *prometheus.CounterVec
}

// NewTaxonomyMetrics registers the engine metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewTaxonomyMetrics(reg prometheus.Registerer) *TaxonomyMetrics {
	if reg == nil {
		return &TaxonomyMetrics{}
	}
	planDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "taxonomy_plan_duration_seconds",
		Help:      "Time spent applying a taxonomy counter plan inside a transaction.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "taxonomy_steps_total",
		Help:      "Counter steps executed, by step kind.",
	}, []string{"step"})
	underflows := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "taxonomy_counter_underflow_total",
		Help:      "Subcategory decrements clamped at zero.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "taxonomy_plan_failures_total",
		Help:      "Counter plans that aborted their transaction.",
	}, []string{"op"})
	reg.MustRegister(planDuration, steps, underflows, failures)
	return &TaxonomyMetrics{
		planDuration: planDuration,
		steps:        steps,
		underflows:   underflows,
		failures:     failures,
	}
}

func (m *TaxonomyMetrics) ObservePlan(op string, duration time.Duration) {
	if m == nil || m.planDuration == nil {
		return
	}
	m.planDuration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

func (m *TaxonomyMetrics) IncStep(step string) {
	if m == nil || m.steps == nil {
		return
	}
	m.steps.WithLabelValues(normalizeLabel(step)).Inc()
}

func (m *TaxonomyMetrics) IncUnderflow() {
	if m == nil || m.underflows == nil {
		return
	}
	m.underflows.Inc()
}

func (m *TaxonomyMetrics) IncFailure(op string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
