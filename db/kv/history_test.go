package kv

import (
	"context"
	"testing"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyFixture(caseNumber string, at time.Time, pos *int) *board.CaseHistory {
	return &board.CaseHistory{
		CaseNumber:  caseNumber,
		Status:      board.StatusInSession,
		Position:    pos,
		CourtNumber: "5",
		JudgeName:   "HON'BLE JUSTICE T. FIXTURE",
		ScrapedAt:   at,
	}
}

func TestSaveCaseHistoriesIdempotent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	at := time.Now().Round(time.Millisecond)

	entries := []*board.CaseHistory{
		historyFixture("SCA/1/2024", at, board.IntPtr(3)),
		historyFixture("SCA/2/2024", at, nil),
	}

	inserted, err := db.SaveCaseHistories(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Replaying the identical batch inserts nothing.
	inserted, err = db.SaveCaseHistories(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	got, err := db.CaseHistories(ctx, "SCA/1/2024", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SCA/1/2024", got[0].CaseNumber)
	require.NotNil(t, got[0].Position)
	assert.Equal(t, 3, *got[0].Position)
}

func TestCaseHistoriesNewestFirstWithLimit(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC)

	var entries []*board.CaseHistory
	for i := 0; i < 5; i++ {
		entries = append(entries, historyFixture("SCA/9/2024", base.Add(time.Duration(i)*time.Minute), board.IntPtr(5-i)))
	}
	_, err := db.SaveCaseHistories(ctx, entries)
	require.NoError(t, err)

	got, err := db.CaseHistories(ctx, "SCA/9/2024", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].ScrapedAt.After(got[1].ScrapedAt))
	assert.True(t, got[1].ScrapedAt.After(got[2].ScrapedAt))
	assert.True(t, got[0].ScrapedAt.Equal(base.Add(4*time.Minute)))
}

func TestCaseHistoriesDistinctCasesDoNotBleed(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	at := time.Now()

	_, err := db.SaveCaseHistories(ctx, []*board.CaseHistory{
		historyFixture("SCA/1/2024", at, nil),
		historyFixture("SCA/1/2024-B", at, nil),
	})
	require.NoError(t, err)

	got, err := db.CaseHistories(ctx, "SCA/1/2024", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPositionChangeIsNewHistoryKey(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	at := time.Now()

	first := historyFixture("SCA/4/2024", at, board.IntPtr(4))
	second := historyFixture("SCA/4/2024", at, board.IntPtr(3))

	inserted, err := db.SaveCaseHistories(ctx, []*board.CaseHistory{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
}
