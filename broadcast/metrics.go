package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courtwatch_ws_subscribers",
		Help: "Number of connected websocket subscribers.",
	})
	droppedSubscribersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtwatch_ws_dropped_subscribers_total",
		Help: "Subscribers disconnected for not draining their backlog.",
	})
	droppedBroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtwatch_ws_dropped_broadcasts_total",
		Help: "Delta broadcasts dropped because the fan-out loop was saturated.",
	})
)
