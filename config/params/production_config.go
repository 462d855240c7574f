package params

import "time"

var productionBoardConfig = &CourtBoardConfig{
	ConfigName: ConfigNames[Production],

	BoardBaseURL: "https://gujarathighcourt.nic.in/streamingboard/",
	BoardXHRURL:  "https://gujarathighcourt.nic.in/streamingboard/apps/get_case_status.php",
	UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",

	ScrapeInterval:   30 * time.Second,
	TickLockDuration: 25 * time.Second,
	ErrorBackoff:     2 * time.Minute,
	FetchTimeout:     15 * time.Second,

	BusinessStartHour: 10,
	BusinessEndHour:   17,

	NotificationCooldown:    5 * time.Minute,
	WatchMissThreshold:      2,
	VisibilityMissThreshold: 3,

	StatusHistoryLimit:  100,
	NotificationLogTTL:  30 * 24 * time.Hour,
	SnapshotRetention:   7 * 24 * time.Hour,
	CurrentCourtMaxSize: 256,

	SnapshotInterval: 5 * time.Minute,
	CleanupHour:      2,

	ShutdownGrace: 10 * time.Second,
}

// ProductionConfig returns the board configuration used against the live
// courthouse host.
func ProductionConfig() *CourtBoardConfig {
	return productionBoardConfig
}
