package params

import "time"

// MinimalBoardConfig returns a board configuration with tight intervals,
// suited to end to end runs where waiting out production cadence would make
// the suite unusable.
func MinimalBoardConfig() *CourtBoardConfig {
	minimal := ProductionConfig().Copy()
	minimal.ConfigName = ConfigNames[Minimal]
	minimal.ScrapeInterval = 500 * time.Millisecond
	minimal.TickLockDuration = 400 * time.Millisecond
	minimal.ErrorBackoff = time.Second
	minimal.FetchTimeout = 2 * time.Second
	minimal.NotificationCooldown = 2 * time.Second
	minimal.SnapshotInterval = 5 * time.Second
	minimal.ShutdownGrace = time.Second
	// The gate would make timed runs flaky outside courthouse hours.
	minimal.BusinessStartHour = 0
	minimal.BusinessEndHour = 23
	return minimal
}
