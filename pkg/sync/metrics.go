package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tuttle_sync_runs_total",
			Help: "Total number of synchronization runs",
		},
	)

	syncFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuttle_sync_failed_total",
			Help: "Total number of failed synchronization runs",
		},
		[]string{"stage"},
	)

	syncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tuttle_sync_duration_seconds",
			Help:    "Synchronization run duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	syncRepositories = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tuttle_sync_repositories_total",
			Help: "Total number of repositories reconciled",
		},
	)

	syncDeployKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tuttle_sync_deploy_keys_total",
			Help: "Total number of deploy keys cached",
		},
	)
)
