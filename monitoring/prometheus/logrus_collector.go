package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// LogrusCollector is a logrus hook that counts emitted log entries per level
// and package prefix, surfacing noisy components on the metrics endpoint.
type LogrusCollector struct {
	counterVec *prometheus.CounterVec
}

var (
	supportedLevels = []logrus.Level{logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}
	counterVec      = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtwatch_log_entries_total",
		Help: "Total number of log messages emitted, by level and prefix.",
	}, []string{"level", "prefix"})
)

const prefixKey = "prefix"
const defaultPrefix = "global"

// NewLogrusCollector returns a logrus hook backed by the shared counter.
func NewLogrusCollector() *LogrusCollector {
	return &LogrusCollector{
		counterVec: counterVec,
	}
}

// Fire is called on every log call.
func (hook *LogrusCollector) Fire(entry *logrus.Entry) error {
	prefix := defaultPrefix
	if prefixValue, ok := entry.Data[prefixKey]; ok {
		prefix, ok = prefixValue.(string)
		if !ok {
			return errors.New("prefix is not a string")
		}
	}
	hook.counterVec.WithLabelValues(entry.Level.String(), prefix).Inc()
	return nil
}

// Levels returns the log levels this hook triggers on.
func (_ *LogrusCollector) Levels() []logrus.Level {
	return supportedLevels
}
