/*
metrics.go - Prometheus metrics for scheduling runs

PURPOSE:
  Aggregate observability for the pipeline. Row-level admission skips are
  never logged; they surface only here, as counters by reason.

METRICS:
  fleet_schedule_runs_total{status}        completed/failed run counts
  fleet_schedule_assignments_total         committed loans across all runs
  fleet_schedule_candidates_total          candidates considered
  fleet_schedule_skips_total{reason}       admission skips by reason
  fleet_schedule_run_duration_seconds      run latency histogram

SEE ALSO:
  - server.go: mounts /metrics
  - handlers.go: ObserveRun call sites
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fleetline/loan-scheduler/schedule"
)

// Metrics holds the run-level Prometheus instruments.
type Metrics struct {
	runs        *prometheus.CounterVec
	assignments prometheus.Counter
	candidates  prometheus.Counter
	skips       *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics registers the instruments on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_schedule_runs_total",
			Help: "Scheduling runs by terminal status.",
		}, []string{"status"}),
		assignments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleet_schedule_assignments_total",
			Help: "Loans committed across all runs.",
		}),
		candidates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleet_schedule_candidates_total",
			Help: "Candidates considered across all runs.",
		}),
		skips: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_schedule_skips_total",
			Help: "Admission skips by reason.",
		}, []string{"reason"}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleet_schedule_run_duration_seconds",
			Help:    "End-to-end run latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records one run outcome. result is nil on failure.
func (m *Metrics) ObserveRun(result *schedule.RunResult, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.runs.WithLabelValues("failed").Inc()
		return
	}
	m.runs.WithLabelValues("completed").Inc()
	m.assignments.Add(float64(len(result.Assignments)))
	m.candidates.Add(float64(result.Candidates))
	for reason, n := range result.Skips {
		m.skips.WithLabelValues(string(reason)).Add(float64(n))
	}
	m.duration.Observe(result.Elapsed.Seconds())
}
