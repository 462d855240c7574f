package kv

import (
	"bytes"
	"context"
	"strconv"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/encoding/bytesutil"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// historyKey is unique over (case, scrape time, status, court, position),
// making replays of the same tick idempotent. The case number prefix keeps
// one case's entries adjacent, ordered by scrape time.
func historyKey(h *board.CaseHistory) []byte {
	position := "n"
	if h.Position != nil {
		position = strconv.Itoa(*h.Position)
	}
	return compositeKey(
		[]byte(h.CaseNumber),
		bytesutil.Int64ToBytesBigEndian(h.ScrapedAt.UnixNano()),
		[]byte(h.Status),
		[]byte(h.CourtNumber),
		[]byte(position),
	)
}

// SaveCaseHistories bulk-inserts history entries. Entries whose composite
// key already exists are skipped and counted, not errored, so replaying a
// tick cannot duplicate history.
func (s *Store) SaveCaseHistories(ctx context.Context, entries []*board.CaseHistory) (int, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.SaveCaseHistories")
	defer span.End()
	encoded := make([][]byte, len(entries))
	for i, h := range entries {
		enc, err := encode(ctx, h)
		if err != nil {
			return 0, err
		}
		encoded[i] = enc
	}
	inserted := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(caseHistoryBucket)
		for i, h := range entries {
			key := historyKey(h)
			if bkt.Get(key) != nil {
				caseHistoryDuplicatesTotal.Inc()
				continue
			}
			if err := bkt.Put(key, encoded[i]); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// CaseHistories returns a case's history entries ordered newest first,
// bounded by limit when limit > 0.
func (s *Store) CaseHistories(ctx context.Context, caseNumber string, limit int) ([]*board.CaseHistory, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.CaseHistories")
	defer span.End()
	prefix := append([]byte(caseNumber), keySeparator)
	entries := make([]*board.CaseHistory, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(caseHistoryBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			h := &board.CaseHistory{}
			if err := decode(ctx, v, h); err != nil {
				return err
			}
			entries = append(entries, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Reverse into newest-first order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
