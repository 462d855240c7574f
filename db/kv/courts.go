package kv

import (
	"context"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/config/params"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// CurrentCourt returns the durable view entry for a court code, or nil when
// the court has never been observed.
func (s *Store) CurrentCourt(ctx context.Context, courtCode string) (*board.CurrentCourt, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.CurrentCourt")
	defer span.End()
	var entry *board.CurrentCourt
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(currentCourtsBucket).Get([]byte(courtCode))
		if enc == nil {
			return nil
		}
		entry = &board.CurrentCourt{}
		return decode(ctx, enc, entry)
	})
	return entry, err
}

// CurrentCourts returns every durable view entry, including courts currently
// hidden by their missing count.
func (s *Store) CurrentCourts(ctx context.Context) ([]*board.CurrentCourt, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.CurrentCourts")
	defer span.End()
	entries := make([]*board.CurrentCourt, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(currentCourtsBucket).ForEach(func(_, v []byte) error {
			entry := &board.CurrentCourt{}
			if err := decode(ctx, v, entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// VisibleCourts returns the durable view restricted to courts whose missing
// count has not crossed the visibility threshold.
func (s *Store) VisibleCourts(ctx context.Context) ([]*board.CurrentCourt, error) {
	all, err := s.CurrentCourts(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]*board.CurrentCourt, 0, len(all))
	for _, entry := range all {
		if entry.IsVisible {
			visible = append(visible, entry)
		}
	}
	return visible, nil
}

// SaveCurrentCourts upserts changed durable view entries in one transaction.
func (s *Store) SaveCurrentCourts(ctx context.Context, entries []*board.CurrentCourt) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.SaveCurrentCourts")
	defer span.End()
	encoded := make([][]byte, len(entries))
	for i, entry := range entries {
		enc, err := encode(ctx, entry)
		if err != nil {
			return err
		}
		encoded[i] = enc
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(currentCourtsBucket)
		for i, entry := range entries {
			if err := bkt.Put([]byte(entry.CourtCode), encoded[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// TouchCurrentCourts refreshes CheckedAt and clears the missing state for
// courts present but unchanged in the latest tick.
func (s *Store) TouchCurrentCourts(ctx context.Context, courtCodes []string, checkedAt time.Time) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.TouchCurrentCourts")
	defer span.End()
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(currentCourtsBucket)
		for _, code := range courtCodes {
			enc := bkt.Get([]byte(code))
			if enc == nil {
				continue
			}
			entry := &board.CurrentCourt{}
			if err := decode(ctx, enc, entry); err != nil {
				return err
			}
			entry.CheckedAt = checkedAt
			entry.MissingCount = 0
			entry.IsVisible = true
			out, err := encode(ctx, entry)
			if err != nil {
				return err
			}
			if err := bkt.Put([]byte(code), out); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkCourtsMissing increments the missing count for courts absent from the
// latest tick and recomputes their visibility against the configured
// threshold.
func (s *Store) MarkCourtsMissing(ctx context.Context, courtCodes []string) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.MarkCourtsMissing")
	defer span.End()
	threshold := params.BoardConfig().VisibilityMissThreshold
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(currentCourtsBucket)
		for _, code := range courtCodes {
			enc := bkt.Get([]byte(code))
			if enc == nil {
				continue
			}
			entry := &board.CurrentCourt{}
			if err := decode(ctx, enc, entry); err != nil {
				return err
			}
			entry.MissingCount++
			entry.IsVisible = entry.MissingCount < threshold
			out, err := encode(ctx, entry)
			if err != nil {
				return err
			}
			if err := bkt.Put([]byte(code), out); err != nil {
				return err
			}
		}
		return nil
	})
}
