package kv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	caseHistoryDuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtwatch_case_history_duplicates_total",
		Help: "Replayed case history entries skipped by their composite key.",
	})
	notificationLogsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtwatch_notification_logs_pruned_total",
		Help: "Notification delivery records removed by the retention chore.",
	})
	snapshotsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtwatch_snapshots_pruned_total",
		Help: "Board snapshots removed by the retention chore.",
	})
	bucketKeysGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "courtwatch_db_bucket_keys",
		Help: "Number of keys per store bucket, refreshed by the snapshot chore.",
	}, []string{"bucket"})
)
