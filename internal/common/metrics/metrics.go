package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProfileValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_validations_total",
			Help: "Profile form validations by result (valid, invalid)",
		},
		[]string{"result"},
	)

	ProfileSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_submissions_total",
			Help: "Profile submissions handed to a sink, by outcome",
		},
		[]string{"sink", "outcome"},
	)

	ProfileSubmitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_submit_duration_seconds",
			Help:    "Duration of sink submit calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sink"},
	)

	ProfileSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "profile_sessions_active",
			Help: "Number of open profile form sessions",
		},
	)

	PostsFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_fetch_total",
			Help: "Posts list loads by source (cache, api, error)",
		},
		[]string{"source"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
