package watch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	watchlistsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtwatch_watchlists_processed_total",
		Help: "Watchlists evaluated against a tick, across all ticks.",
	})
	watchlistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtwatch_watchlist_failures_total",
		Help: "Watchlists whose per-tick processing failed and was skipped.",
	})
	alertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtwatch_alerts_sent_total",
		Help: "Alerts delivered to devices, by alert type.",
	}, []string{"type"})
	alertSendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtwatch_alert_send_failures_total",
		Help: "Alerts that failed to reach the push gateway.",
	})
)
