package kv

import (
	"bytes"
	"context"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/encoding/bytesutil"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// SaveSnapshot stores a periodic full-board snapshot keyed by capture time.
func (s *Store) SaveSnapshot(ctx context.Context, snap *board.Snapshot) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.SaveSnapshot")
	defer span.End()
	enc, err := encode(ctx, snap)
	if err != nil {
		return err
	}
	key := bytesutil.Int64ToBytesBigEndian(snap.TakenAt.UnixNano())
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Put(key, enc)
	})
}

// LatestSnapshot returns the most recent snapshot, or nil when none exists.
func (s *Store) LatestSnapshot(ctx context.Context) (*board.Snapshot, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.LatestSnapshot")
	defer span.End()
	var snap *board.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket(snapshotsBucket).Cursor().Last()
		if v == nil {
			return nil
		}
		snap = &board.Snapshot{}
		return decode(ctx, v, snap)
	})
	return snap, err
}

// PruneSnapshots deletes snapshots taken before the cutoff.
func (s *Store) PruneSnapshots(ctx context.Context, before time.Time) (int, error) {
	_, span := trace.StartSpan(ctx, "BoardDB.PruneSnapshots")
	defer span.End()
	cutoff := bytesutil.Int64ToBytesBigEndian(before.UnixNano())
	pruned := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(snapshotsBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if bytes.Compare(k, cutoff) >= 0 {
				return nil
			}
			if err := c.Delete(); err != nil {
				return err
			}
			pruned++
			snapshotsPrunedTotal.Inc()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pruned, nil
}

// UpdateBucketStats refreshes the per-bucket key count gauges. The snapshot
// chore calls this on its cadence.
func (s *Store) UpdateBucketStats(ctx context.Context) error {
	_, span := trace.StartSpan(ctx, "BoardDB.UpdateBucketStats")
	defer span.End()
	return s.db.View(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{
			currentCourtsBucket,
			watchlistsBucket,
			caseHistoryBucket,
			caseStatisticsBucket,
			devicesBucket,
			notificationLogsBucket,
			snapshotsBucket,
		} {
			stats := tx.Bucket(bucket).Stats()
			bucketKeysGauge.WithLabelValues(string(bucket)).Set(float64(stats.KeyN))
		}
		return nil
	})
}
