package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtwatch_scrape_ticks_total",
		Help: "Scrape ticks by outcome: ok, not_modified, error, or one of the skip reasons.",
	}, []string{"result"})
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courtwatch_scrape_tick_duration_seconds",
		Help:    "Wall time of one full tick pipeline pass.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
	})
	changedCourtsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courtwatch_board_changed_courts",
		Help: "Courts whose signature moved on the latest tick.",
	})
	observedCourtsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courtwatch_board_observed_courts",
		Help: "Courts present on the board on the latest tick.",
	})
)
