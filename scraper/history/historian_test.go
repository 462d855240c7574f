package history

import (
	"context"
	"testing"
	"time"

	"github.com/courtwatch/courtwatch/board"
	dbtest "github.com/courtwatch/courtwatch/db/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observedCourt(number, caseNumber string, status board.CaseStatus, position *int, scrapedAt time.Time) *board.Court {
	return &board.Court{
		CourtCode:     number,
		CourtNumber:   number,
		JudgeName:     "HON'BLE JUSTICE A. EXAMPLE",
		CaseNumber:    caseNumber,
		CaseStatus:    status,
		QueuePosition: position,
		ScrapedAt:     scrapedAt,
	}
}

func TestRecordFirstSighting(t *testing.T) {
	store := dbtest.SetupDB(t)
	h := NewHistorian(store)
	ctx := context.Background()

	scrapedAt := time.Unix(1700000000, 0).UTC()
	inserted, err := h.Record(ctx, []*board.Court{
		observedCourt("5", "SCA/1/2024", board.StatusInSession, board.IntPtr(7), scrapedAt),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	rows, err := store.CaseHistories(ctx, "SCA/1/2024", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, board.StatusInSession, rows[0].Status)
	assert.Equal(t, "5", rows[0].CourtNumber)
	assert.Equal(t, "HON'BLE JUSTICE A. EXAMPLE", rows[0].JudgeName)
	require.NotNil(t, rows[0].Position)
	assert.Equal(t, 7, *rows[0].Position)
	assert.Equal(t, scrapedAt, rows[0].ScrapedAt)

	stats, err := store.CaseStatistics(ctx, "SCA/1/2024")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.TotalAppearances)
	assert.Equal(t, []string{"5"}, stats.Courts)
	assert.Equal(t, []string{"HON'BLE JUSTICE A. EXAMPLE"}, stats.Judges)
	assert.Equal(t, scrapedAt, stats.FirstSeen)
	assert.Equal(t, scrapedAt, stats.LastSeen)
	require.Len(t, stats.StatusHistory, 1)
	assert.Equal(t, board.StatusInSession, stats.StatusHistory[0].Status)
}

func TestRecordReplayIsIdempotent(t *testing.T) {
	store := dbtest.SetupDB(t)
	h := NewHistorian(store)
	ctx := context.Background()

	scrapedAt := time.Unix(1700000000, 0).UTC()
	courts := []*board.Court{
		observedCourt("5", "SCA/1/2024", board.StatusInSession, board.IntPtr(7), scrapedAt),
	}
	inserted, err := h.Record(ctx, courts)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// Same tick again through the same historian: suppressed in memory.
	inserted, err = h.Record(ctx, courts)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	// Same tick through a fresh historian, as after a restart: the entry is
	// re-emitted but the composite key swallows it.
	inserted, err = NewHistorian(store).Record(ctx, courts)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	rows, err := store.CaseHistories(ctx, "SCA/1/2024", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRecordEmitsOnAnyTrackedFieldChange(t *testing.T) {
	store := dbtest.SetupDB(t)
	h := NewHistorian(store)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	ticks := []struct {
		name     string
		status   board.CaseStatus
		position *int
		want     int
	}{
		{"first sighting", board.StatusInSession, board.IntPtr(7), 1},
		{"status moved", board.StatusRecess, board.IntPtr(7), 1},
		{"position moved", board.StatusRecess, board.IntPtr(6), 1},
		{"nothing moved", board.StatusRecess, board.IntPtr(6), 0},
		{"position cleared", board.StatusRecess, nil, 1},
	}
	for i, tick := range ticks {
		t.Run(tick.name, func(t *testing.T) {
			scrapedAt := base.Add(time.Duration(i) * 30 * time.Second)
			inserted, err := h.Record(ctx, []*board.Court{
				observedCourt("5", "SCA/1/2024", tick.status, tick.position, scrapedAt),
			})
			require.NoError(t, err)
			assert.Equal(t, tick.want, inserted)
		})
	}

	rows, err := store.CaseHistories(ctx, "SCA/1/2024", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestRecordCaseHandoverBetweenTicks(t *testing.T) {
	store := dbtest.SetupDB(t)
	h := NewHistorian(store)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	inserted, err := h.Record(ctx, []*board.Court{
		observedCourt("5", "SCA/1/2024", board.StatusInSession, nil, base),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// The card goes blank between cases: remembered, not recorded.
	inserted, err = h.Record(ctx, []*board.Court{
		observedCourt("5", "", board.StatusNone, nil, base.Add(30*time.Second)),
	})
	require.NoError(t, err)
	assert.Zero(t, inserted)

	// The next case up registers as a change against the blank card.
	inserted, err = h.Record(ctx, []*board.Court{
		observedCourt("5", "WP/9/2026", board.StatusInSession, nil, base.Add(time.Minute)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	rows, err := store.CaseHistories(ctx, "WP/9/2026", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRecordAccumulatesStatisticsAcrossCourts(t *testing.T) {
	store := dbtest.SetupDB(t)
	h := NewHistorian(store)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	_, err := h.Record(ctx, []*board.Court{
		observedCourt("5", "SCA/1/2024", board.StatusRecess, board.IntPtr(3), base),
	})
	require.NoError(t, err)

	// The case gets reassigned to another court and is heard there. The
	// unchanged sighting in between still counts as an appearance.
	_, err = h.Record(ctx, []*board.Court{
		observedCourt("5", "SCA/1/2024", board.StatusRecess, board.IntPtr(3), base.Add(30*time.Second)),
	})
	require.NoError(t, err)
	_, err = h.Record(ctx, []*board.Court{
		observedCourt("7", "SCA/1/2024", board.StatusInSession, nil, base.Add(time.Minute)),
	})
	require.NoError(t, err)

	stats, err := store.CaseStatistics(ctx, "SCA/1/2024")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.TotalAppearances)
	assert.Equal(t, []string{"5", "7"}, stats.Courts)
	assert.Equal(t, base, stats.FirstSeen)
	assert.Equal(t, base.Add(time.Minute), stats.LastSeen)
	require.Len(t, stats.StatusHistory, 3)
	assert.Equal(t, board.StatusInSession, stats.StatusHistory[2].Status)
}
