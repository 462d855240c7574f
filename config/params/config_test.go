package params

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionConfigMatchesUpstreamContract(t *testing.T) {
	cfg := ProductionConfig()
	assert.Equal(t, 30*time.Second, cfg.ScrapeInterval)
	assert.Equal(t, 25*time.Second, cfg.TickLockDuration)
	assert.Equal(t, 2*time.Minute, cfg.ErrorBackoff)
	assert.Equal(t, 5*time.Minute, cfg.NotificationCooldown)
	assert.Equal(t, 2, cfg.WatchMissThreshold)
	assert.Equal(t, 3, cfg.VisibilityMissThreshold)
	assert.Equal(t, 100, cfg.StatusHistoryLimit)
	assert.Equal(t, 10, cfg.BusinessStartHour)
	assert.Equal(t, 17, cfg.BusinessEndHour)
	require.True(t, cfg.TickLockDuration < cfg.ScrapeInterval,
		"the lock must expire before the next fire or every tick would be skipped")
}

func TestWithinBusinessHours(t *testing.T) {
	cfg := ProductionConfig()
	day := func(hour int) time.Time {
		return time.Date(2024, 3, 4, hour, 30, 0, 0, time.Local)
	}
	assert.False(t, cfg.WithinBusinessHours(day(9)))
	assert.True(t, cfg.WithinBusinessHours(day(10)))
	assert.True(t, cfg.WithinBusinessHours(day(13)))
	assert.True(t, cfg.WithinBusinessHours(day(17)))
	assert.False(t, cfg.WithinBusinessHours(day(18)))
}

func TestOverrideBoardConfig(t *testing.T) {
	SetupTestConfigCleanup(t)
	cfg := BoardConfig().Copy()
	cfg.ScrapeInterval = 5 * time.Second
	OverrideBoardConfig(cfg)
	assert.Equal(t, 5*time.Second, BoardConfig().ScrapeInterval)
}

func TestCopyIsDeep(t *testing.T) {
	cfg := ProductionConfig().Copy()
	cfg.WatchMissThreshold = 99
	assert.Equal(t, 2, ProductionConfig().WatchMissThreshold)
}

func TestLoadBoardConfigFile(t *testing.T) {
	SetupTestConfigCleanup(t)
	file := filepath.Join(t.TempDir(), "board.yaml")
	content := `CONFIG_NAME: 'tuned'
SCRAPER_INTERVAL: 10s
NOTIFICATION_COOLDOWN: 90s
WATCH_MISS_THRESHOLD: 4
COURT_BASE_URL: https://example.net/board/
`
	require.NoError(t, ioutil.WriteFile(file, []byte(content), 0644))

	LoadBoardConfigFile(file)

	cfg := BoardConfig()
	assert.Equal(t, "tuned", cfg.ConfigName)
	assert.Equal(t, 10*time.Second, cfg.ScrapeInterval)
	assert.Equal(t, 90*time.Second, cfg.NotificationCooldown)
	assert.Equal(t, 4, cfg.WatchMissThreshold)
	assert.Equal(t, "https://example.net/board/", cfg.BoardBaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 25*time.Second, cfg.TickLockDuration)
}

func TestReplaceDurationWithYAMLFormat(t *testing.T) {
	assert.Equal(t, "SCRAPER_INTERVAL: 30000000000", replaceDurationWithYAMLFormat("SCRAPER_INTERVAL: 30s"))
	assert.Equal(t, "WATCH_MISS_THRESHOLD: 2", replaceDurationWithYAMLFormat("WATCH_MISS_THRESHOLD: 2"))
	assert.Equal(t, "COURT_BASE_URL: https://example.net/", replaceDurationWithYAMLFormat("COURT_BASE_URL: https://example.net/"))
}

func TestMinimalConfigKeepsGateOpen(t *testing.T) {
	cfg := MinimalBoardConfig()
	for hour := 0; hour < 24; hour++ {
		assert.True(t, cfg.WithinBusinessHours(time.Date(2024, 3, 4, hour, 0, 0, 0, time.Local)))
	}
}
