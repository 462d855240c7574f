package kv

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/courtwatch/courtwatch/board"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// ErrAlreadyWatching is returned when a device subscribes to a case it
// already has an active watchlist for.
var ErrAlreadyWatching = errors.New("device already watches this case")

// CreateWatchlist stores a new watchlist, assigns its ID, and enforces the
// one-active-watchlist-per-(device, case) rule through the active index.
func (s *Store) CreateWatchlist(ctx context.Context, w *board.Watchlist) (string, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.CreateWatchlist")
	defer span.End()
	id, err := randomID()
	if err != nil {
		return "", err
	}
	w.ID = id
	w.Active = true
	enc, err := encode(ctx, w)
	if err != nil {
		return "", err
	}
	indexKey := compositeKey([]byte(w.DeviceID), []byte(w.CaseNumber))
	err = s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(watchlistActiveIndexBucket)
		if index.Get(indexKey) != nil {
			return ErrAlreadyWatching
		}
		if err := index.Put(indexKey, []byte(id)); err != nil {
			return err
		}
		return tx.Bucket(watchlistsBucket).Put([]byte(id), enc)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// SaveWatchlist upserts an existing watchlist by ID.
func (s *Store) SaveWatchlist(ctx context.Context, w *board.Watchlist) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.SaveWatchlist")
	defer span.End()
	if w.ID == "" {
		return errors.New("watchlist has no ID")
	}
	enc, err := encode(ctx, w)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(watchlistsBucket).Put([]byte(w.ID), enc)
	})
}

// Watchlist returns a watchlist by ID, or nil when unknown.
func (s *Store) Watchlist(ctx context.Context, id string) (*board.Watchlist, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.Watchlist")
	defer span.End()
	var w *board.Watchlist
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(watchlistsBucket).Get([]byte(id))
		if enc == nil {
			return nil
		}
		w = &board.Watchlist{}
		return decode(ctx, enc, w)
	})
	return w, err
}

// ActiveWatchlists returns every active watchlist. The processor walks this
// set once per tick.
func (s *Store) ActiveWatchlists(ctx context.Context) ([]*board.Watchlist, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.ActiveWatchlists")
	defer span.End()
	watchlists := make([]*board.Watchlist, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(watchlistsBucket).ForEach(func(_, v []byte) error {
			w := &board.Watchlist{}
			if err := decode(ctx, v, w); err != nil {
				return err
			}
			if w.Active {
				watchlists = append(watchlists, w)
			}
			return nil
		})
	})
	return watchlists, err
}

// WatchlistsByDevice returns all watchlists, active or not, registered by a
// device.
func (s *Store) WatchlistsByDevice(ctx context.Context, deviceID string) ([]*board.Watchlist, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.WatchlistsByDevice")
	defer span.End()
	watchlists := make([]*board.Watchlist, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(watchlistsBucket).ForEach(func(_, v []byte) error {
			w := &board.Watchlist{}
			if err := decode(ctx, v, w); err != nil {
				return err
			}
			if w.DeviceID == deviceID {
				watchlists = append(watchlists, w)
			}
			return nil
		})
	})
	return watchlists, err
}

// DeactivateWatchlist marks a watchlist inactive and releases its slot in
// the active index so the device may subscribe to the case again later.
func (s *Store) DeactivateWatchlist(ctx context.Context, id string) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.DeactivateWatchlist")
	defer span.End()
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(watchlistsBucket)
		enc := bkt.Get([]byte(id))
		if enc == nil {
			return errors.Wrapf(ErrNotFound, "watchlist %s", id)
		}
		w := &board.Watchlist{}
		if err := decode(ctx, enc, w); err != nil {
			return err
		}
		if !w.Active {
			return nil
		}
		w.Active = false
		out, err := encode(ctx, w)
		if err != nil {
			return err
		}
		if err := bkt.Put([]byte(id), out); err != nil {
			return err
		}
		indexKey := compositeKey([]byte(w.DeviceID), []byte(w.CaseNumber))
		return tx.Bucket(watchlistActiveIndexBucket).Delete(indexKey)
	})
}

func randomID() (string, error) {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", errors.Wrap(err, "could not generate watchlist ID")
	}
	return hex.EncodeToString(b[:]), nil
}
