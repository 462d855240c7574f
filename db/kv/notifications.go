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

// notificationKey leads with the send time so the retention chore can walk
// records oldest first and stop at the cutoff.
func notificationKey(n *board.NotificationLog) []byte {
	return compositeKey(
		bytesutil.Int64ToBytesBigEndian(n.SentAt.UnixNano()),
		[]byte(n.DeviceID),
		[]byte(n.CaseNumber),
		[]byte(n.Type),
		[]byte(n.CourtNumber),
	)
}

// RecordNotification stores one delivery attempt, successful or not.
func (s *Store) RecordNotification(ctx context.Context, n *board.NotificationLog) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.RecordNotification")
	defer span.End()
	enc, err := encode(ctx, n)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(notificationLogsBucket).Put(notificationKey(n), enc)
	})
}

// NotificationsByDevice returns a device's delivery records, oldest first.
func (s *Store) NotificationsByDevice(ctx context.Context, deviceID string) ([]*board.NotificationLog, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.NotificationsByDevice")
	defer span.End()
	logs := make([]*board.NotificationLog, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(notificationLogsBucket).ForEach(func(_, v []byte) error {
			n := &board.NotificationLog{}
			if err := decode(ctx, v, n); err != nil {
				return err
			}
			if n.DeviceID == deviceID {
				logs = append(logs, n)
			}
			return nil
		})
	})
	return logs, err
}

// PruneNotificationLogs deletes delivery records sent before the cutoff.
// Keys are time-prefixed, so the walk exits at the first retained record.
func (s *Store) PruneNotificationLogs(ctx context.Context, before time.Time) (int, error) {
	_, span := trace.StartSpan(ctx, "BoardDB.PruneNotificationLogs")
	defer span.End()
	cutoff := bytesutil.Int64ToBytesBigEndian(before.UnixNano())
	pruned := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(notificationLogsBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if bytes.Compare(k[:8], cutoff) >= 0 {
				return nil
			}
			if err := c.Delete(); err != nil {
				return err
			}
			pruned++
			notificationLogsPrunedTotal.Inc()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pruned, nil
}
