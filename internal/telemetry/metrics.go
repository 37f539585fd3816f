package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики оркестратора. Экспортируются через /metrics в server-бинаре.
var (
	// JobsTotal — количество финализированных jobs по статусам.
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casegraph_jobs_total",
		Help: "Finalized recompute jobs by status.",
	}, []string{"status"})

	// StepsTotal — количество финализированных шагов по узлу и статусу.
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casegraph_steps_total",
		Help: "Finalized recompute steps by node type and status.",
	}, []string{"node_type", "status"})

	// StepDuration — длительность выполнения шага (только реально выполненных).
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "casegraph_step_duration_seconds",
		Help:    "Duration of executed recompute steps.",
		Buckets: prometheus.DefBuckets,
	}, []string{"node_type"})

	// JobDuration — длительность прогона job.
	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "casegraph_job_duration_seconds",
		Help:    "Duration of recompute jobs.",
		Buckets: prometheus.DefBuckets,
	})
)
