package kv

import (
	"context"
	"testing"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/config/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCaseObservation(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	first := time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC)

	require.NoError(t, db.RecordCaseObservation(ctx, &board.CaseHistory{
		CaseNumber:  "SCA/1/2024",
		Status:      board.StatusInSession,
		Position:    board.IntPtr(5),
		CourtNumber: "5",
		JudgeName:   "HON'BLE JUSTICE A",
		ScrapedAt:   first,
	}))
	require.NoError(t, db.RecordCaseObservation(ctx, &board.CaseHistory{
		CaseNumber:  "SCA/1/2024",
		Status:      board.StatusRecess,
		CourtNumber: "12",
		JudgeName:   "HON'BLE JUSTICE B",
		ScrapedAt:   first.Add(time.Minute),
	}))

	stats, err := db.CaseStatistics(ctx, "SCA/1/2024")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.True(t, stats.FirstSeen.Equal(first), "FirstSeen set once")
	assert.True(t, stats.LastSeen.Equal(first.Add(time.Minute)))
	assert.Equal(t, 2, stats.TotalAppearances)
	assert.Equal(t, []string{"5", "12"}, stats.Courts)
	assert.Equal(t, []string{"HON'BLE JUSTICE A", "HON'BLE JUSTICE B"}, stats.Judges)
	require.Len(t, stats.StatusHistory, 2)
	assert.Equal(t, board.StatusRecess, stats.StatusHistory[1].Status)
}

func TestRecordCaseObservationBoundsStatusTail(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	cfg := params.BoardConfig().Copy()
	cfg.StatusHistoryLimit = 5
	params.OverrideBoardConfig(cfg)

	db := setupDB(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 9; i++ {
		require.NoError(t, db.RecordCaseObservation(ctx, &board.CaseHistory{
			CaseNumber:  "SCA/2/2024",
			Status:      board.StatusInSession,
			CourtNumber: "5",
			ScrapedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	stats, err := db.CaseStatistics(ctx, "SCA/2/2024")
	require.NoError(t, err)
	assert.Len(t, stats.StatusHistory, 5)
	assert.Equal(t, 9, stats.TotalAppearances, "appearances keep counting past the tail bound")
}

func TestAdjustWatchCount(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	// Works before the case was ever scraped.
	require.NoError(t, db.AdjustWatchCount(ctx, "SCA/3/2024", 1))
	require.NoError(t, db.AdjustWatchCount(ctx, "SCA/3/2024", 1))
	stats, err := db.CaseStatistics(ctx, "SCA/3/2024")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.WatchCount)

	require.NoError(t, db.AdjustWatchCount(ctx, "SCA/3/2024", -1))
	require.NoError(t, db.AdjustWatchCount(ctx, "SCA/3/2024", -5))
	stats, err = db.CaseStatistics(ctx, "SCA/3/2024")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.WatchCount, "watch count clamps at zero")
}

func TestCaseStatisticsUnknownCase(t *testing.T) {
	db := setupDB(t)
	stats, err := db.CaseStatistics(context.Background(), "SCA/404/2024")
	require.NoError(t, err)
	assert.Nil(t, stats)
}
