// Package params defines the constants that govern the streaming board
// pipeline: scrape cadence, tick guards, alert thresholds, and retention
// windows. Values are reachable through the BoardConfig singleton and may be
// overridden at startup from flags or a yaml file.
package params

import (
	"time"
)

// CourtBoardConfig contains the constant configuration for the court streaming
// board pipeline. Duration fields are yaml-tagged with their documented
// environment names; the loader accepts Go duration strings for them.
type CourtBoardConfig struct {
	ConfigName string `yaml:"CONFIG_NAME"` // ConfigName for logging and debugging purposes.

	// Upstream endpoints.
	BoardBaseURL string `yaml:"COURT_BASE_URL"`     // BoardBaseURL is the streaming board page with the card DOM.
	BoardXHRURL  string `yaml:"COURT_XHR_URL"`      // BoardXHRURL is the JSON endpoint polled for per-court rows.
	UserAgent    string `yaml:"SCRAPER_USER_AGENT"` // UserAgent sent on every upstream request.

	// Tick cadence and guards.
	ScrapeInterval   time.Duration `yaml:"SCRAPER_INTERVAL"`   // ScrapeInterval between ticker fires.
	TickLockDuration time.Duration `yaml:"TICK_LOCK_DURATION"` // TickLockDuration a tick holds the scheduling lock.
	ErrorBackoff     time.Duration `yaml:"ERROR_BACKOFF"`      // ErrorBackoff applied after a failed tick.
	FetchTimeout     time.Duration `yaml:"FETCH_TIMEOUT"`      // FetchTimeout per upstream HTTP request.

	// Business hours gate, local wall-clock hours, inclusive bounds.
	BusinessStartHour int `yaml:"BUSINESS_START_HOUR"`
	BusinessEndHour   int `yaml:"BUSINESS_END_HOUR"`

	// Alerting.
	NotificationCooldown    time.Duration `yaml:"NOTIFICATION_COOLDOWN"`     // NotificationCooldown between alerts on one watchlist.
	WatchMissThreshold      int           `yaml:"WATCH_MISS_THRESHOLD"`      // WatchMissThreshold of consecutive absences before completion.
	VisibilityMissThreshold int           `yaml:"VISIBILITY_MISS_THRESHOLD"` // VisibilityMissThreshold of absences before a court is hidden.

	// Retention.
	StatusHistoryLimit  int           `yaml:"STATUS_HISTORY_LIMIT"` // StatusHistoryLimit caps per-case status history entries.
	NotificationLogTTL  time.Duration `yaml:"NOTIFICATION_LOG_TTL"` // NotificationLogTTL before delivery records are pruned.
	SnapshotRetention   time.Duration `yaml:"SNAPSHOT_RETENTION"`   // SnapshotRetention before periodic snapshots are pruned.
	CurrentCourtMaxSize int           `yaml:"CURRENT_COURT_MAX"`    // CurrentCourtMaxSize bounds the in-memory delta maps.

	// Chores.
	SnapshotInterval time.Duration `yaml:"SNAPSHOT_INTERVAL"` // SnapshotInterval between full-board snapshots.
	CleanupHour      int           `yaml:"CLEANUP_HOUR"`      // CleanupHour is the local hour the daily prune runs at.

	// Lifecycle.
	ShutdownGrace time.Duration `yaml:"SHUTDOWN_GRACE"` // ShutdownGrace to wait for an in-flight tick on stop.
}

// WithinBusinessHours reports whether the given local time falls inside the
// courthouse business-hours window. Bounds are inclusive.
func (b *CourtBoardConfig) WithinBusinessHours(t time.Time) bool {
	h := t.Hour()
	return h >= b.BusinessStartHour && h <= b.BusinessEndHour
}

// StaleAfter is the age beyond which the durable board view no longer counts
// as fresh for read traffic. Three missed ticks is the cutoff.
func (b *CourtBoardConfig) StaleAfter() time.Duration {
	return 3 * b.ScrapeInterval
}
