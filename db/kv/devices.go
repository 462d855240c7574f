package kv

import (
	"context"

	"github.com/courtwatch/courtwatch/board"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// SaveDevice upserts a device registration by its device ID, refreshing the
// push token on re-registration.
func (s *Store) SaveDevice(ctx context.Context, d *board.Device) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.SaveDevice")
	defer span.End()
	if d.DeviceID == "" {
		return errors.New("device has no ID")
	}
	enc, err := encode(ctx, d)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(devicesBucket).Put([]byte(d.DeviceID), enc)
	})
}

// Device returns a registered device, or nil when unknown.
func (s *Store) Device(ctx context.Context, deviceID string) (*board.Device, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.Device")
	defer span.End()
	var d *board.Device
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(devicesBucket).Get([]byte(deviceID))
		if enc == nil {
			return nil
		}
		d = &board.Device{}
		return decode(ctx, enc, d)
	})
	return d, err
}
