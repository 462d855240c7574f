package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var historyEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "courtwatch_case_history_events_total",
	Help: "Case history events emitted by court state changes.",
})
