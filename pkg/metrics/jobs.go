package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records the outcome of background maintenance jobs.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	healed   *prometheus.CounterVec
}

func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of maintenance jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Maintenance job executions by result.",
	}, []string{"job", "result"})
	healed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_rows_healed_total",
		Help:      "Rows whose derived counters were corrected by a maintenance job.",
	}, []string{"job"})
	reg.MustRegister(duration, runs, healed)
	return &JobMetrics{duration: duration, runs: runs, healed: healed}
}

func (m *JobMetrics) ObserveDuration(job string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

// Result counts one run of job as "success" or "failure".
func (m *JobMetrics) Result(job string, err error) {
	if m == nil || m.runs == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.runs.WithLabelValues(normalizeLabel(job), result).Inc()
}

func (m *JobMetrics) Healed(job string, rows int64) {
	if m == nil || m.healed == nil || rows <= 0 {
		return
	}
	m.healed.WithLabelValues(normalizeLabel(job)).Add(float64(rows))
}
