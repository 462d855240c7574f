package kv

import (
	"context"
	"testing"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotFixture(at time.Time, courts ...string) *board.Snapshot {
	snap := &board.Snapshot{TakenAt: at}
	for _, code := range courts {
		snap.Courts = append(snap.Courts, &board.Court{
			CourtCode:   code,
			CourtNumber: code,
			ScrapedAt:   at,
		})
	}
	return snap
}

func TestLatestSnapshot(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveSnapshot(ctx, snapshotFixture(base, "5")))
	require.NoError(t, db.SaveSnapshot(ctx, snapshotFixture(base.Add(5*time.Minute), "5", "12")))
	require.NoError(t, db.SaveSnapshot(ctx, snapshotFixture(base.Add(10*time.Minute), "5", "12", "18")))

	snap, err := db.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.TakenAt.Equal(base.Add(10*time.Minute)))
	assert.Len(t, snap.Courts, 3)
}

func TestPruneSnapshots(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for day := 0; day < 10; day++ {
		require.NoError(t, db.SaveSnapshot(ctx, snapshotFixture(base.AddDate(0, 0, day), "5")))
	}

	pruned, err := db.PruneSnapshots(ctx, base.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 7, pruned)

	snap, err := db.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.TakenAt.Equal(base.AddDate(0, 0, 9)))
}

func TestUpdateBucketStats(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.UpdateBucketStats(context.Background()))
}
