package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SchedulerMetrics tracks background job runs.
type SchedulerMetrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	schedulerOnce sync.Once
	schedulerInst *SchedulerMetrics
)

// Scheduler returns the process-wide scheduler metrics.
func Scheduler() *SchedulerMetrics {
	schedulerOnce.Do(func() {
		schedulerInst = &SchedulerMetrics{
			runs: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "kanri",
				Subsystem: "scheduler",
				Name:      "job_runs_total",
				Help:      "Background job runs by job name.",
			}, []string{"job"}),
			failures: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "kanri",
				Subsystem: "scheduler",
				Name:      "job_failures_total",
				Help:      "Background job failures by job name.",
			}, []string{"job"}),
			duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "kanri",
				Subsystem: "scheduler",
				Name:      "job_duration_seconds",
				Help:      "Background job duration by job name.",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			}, []string{"job"}),
		}
	})
	return schedulerInst
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	m.runs.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobFailure(job string) {
	m.failures.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, d time.Duration) {
	m.duration.WithLabelValues(job).Observe(d.Seconds())
}
