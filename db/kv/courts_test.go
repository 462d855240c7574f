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

func currentCourtFixture(code string, at time.Time) *board.CurrentCourt {
	court := &board.Court{
		CourtCode:   code,
		CourtNumber: code,
		JudgeName:   "HON'BLE JUSTICE T. FIXTURE",
		BenchType:   board.SingleBench,
		JudgeCount:  1,
		CaseNumber:  "SCA/100/2024",
		CaseStatus:  board.StatusInSession,
		CaseType:    board.CaseTypeActive,
		IsActive:    true,
		ScrapedAt:   at,
	}
	hash, _ := court.DataHash()
	return &board.CurrentCourt{
		CourtCode: code,
		Data:      court,
		DataHash:  hash,
		CheckedAt: at,
		ChangedAt: at,
		IsVisible: true,
	}
}

func TestSaveAndGetCurrentCourts(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	now := time.Now()

	entries := []*board.CurrentCourt{
		currentCourtFixture("5", now),
		currentCourtFixture("12", now),
	}
	require.NoError(t, db.SaveCurrentCourts(ctx, entries))

	got, err := db.CurrentCourt(ctx, "5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "5", got.CourtCode)
	assert.Equal(t, entries[0].DataHash, got.DataHash)

	missing, err := db.CurrentCourt(ctx, "99")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := db.CurrentCourts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTouchCurrentCourts(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	start := time.Now().Round(time.Millisecond)

	entry := currentCourtFixture("5", start)
	entry.MissingCount = 2
	entry.IsVisible = false
	require.NoError(t, db.SaveCurrentCourts(ctx, []*board.CurrentCourt{entry}))

	later := start.Add(30 * time.Second)
	require.NoError(t, db.TouchCurrentCourts(ctx, []string{"5", "unknown"}, later))

	got, err := db.CurrentCourt(ctx, "5")
	require.NoError(t, err)
	assert.True(t, got.CheckedAt.Equal(later))
	assert.Equal(t, 0, got.MissingCount)
	assert.True(t, got.IsVisible)
	// ChangedAt is untouched by a refresh.
	assert.True(t, got.ChangedAt.Equal(start))
}

func TestMarkCourtsMissingHidesAtThreshold(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	db := setupDB(t)
	ctx := context.Background()

	entry := currentCourtFixture("7", time.Now())
	require.NoError(t, db.SaveCurrentCourts(ctx, []*board.CurrentCourt{entry}))

	threshold := params.BoardConfig().VisibilityMissThreshold
	for i := 1; i < threshold; i++ {
		require.NoError(t, db.MarkCourtsMissing(ctx, []string{"7"}))
		got, err := db.CurrentCourt(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, i, got.MissingCount)
		assert.True(t, got.IsVisible, "still visible below the threshold")
	}

	require.NoError(t, db.MarkCourtsMissing(ctx, []string{"7"}))
	got, err := db.CurrentCourt(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, threshold, got.MissingCount)
	assert.False(t, got.IsVisible)

	visible, err := db.VisibleCourts(ctx)
	require.NoError(t, err)
	assert.Empty(t, visible)
}
