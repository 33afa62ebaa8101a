// Package telemetry exposes the process-wide Prometheus counters for
// scheduler task runs/failures and outbox enqueues, registered against
// the default registry. No HTTP route in this module serves them; the
// health surface's /status route does not include them.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	SchedulerTaskRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financebot_scheduler_task_runs_total",
			Help: "Number of times each scheduler task has run.",
		},
		[]string{"task"},
	)
	SchedulerTaskFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financebot_scheduler_task_failures_total",
			Help: "Number of times each scheduler task has panicked or returned an error.",
		},
		[]string{"task"},
	)
	OutboxEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financebot_outbox_enqueued_total",
			Help: "Number of outbox notifications enqueued, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(SchedulerTaskRuns, SchedulerTaskFailures, OutboxEnqueued)
}
