package kv

import (
	"context"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/config/params"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// CaseStatistics returns the accumulated statistics for a case, or nil when
// the case has never been observed.
func (s *Store) CaseStatistics(ctx context.Context, caseNumber string) (*board.CaseStatistics, error) {
	ctx, span := trace.StartSpan(ctx, "BoardDB.CaseStatistics")
	defer span.End()
	var stats *board.CaseStatistics
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(caseStatisticsBucket).Get([]byte(caseNumber))
		if enc == nil {
			return nil
		}
		stats = &board.CaseStatistics{}
		return decode(ctx, enc, stats)
	})
	return stats, err
}

// RecordCaseObservation folds one court observation into the case's
// statistics inside a single transaction: stamps FirstSeen once, advances
// LastSeen, bumps the appearance counter, merges the court and judge sets,
// and appends to the bounded status tail.
func (s *Store) RecordCaseObservation(ctx context.Context, h *board.CaseHistory) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.RecordCaseObservation")
	defer span.End()
	limit := params.BoardConfig().StatusHistoryLimit
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(caseStatisticsBucket)
		stats := &board.CaseStatistics{CaseNumber: h.CaseNumber}
		if enc := bkt.Get([]byte(h.CaseNumber)); enc != nil {
			if err := decode(ctx, enc, stats); err != nil {
				return err
			}
		}
		if stats.FirstSeen.IsZero() {
			stats.FirstSeen = h.ScrapedAt
		}
		stats.LastSeen = h.ScrapedAt
		stats.TotalAppearances++
		stats.AddCourt(h.CourtNumber)
		stats.AddJudge(h.JudgeName)
		stats.AppendStatus(board.StatusEntry{
			Status:        h.Status,
			Timestamp:     h.ScrapedAt,
			CourtNumber:   h.CourtNumber,
			QueuePosition: h.Position,
		}, limit)
		out, err := encode(ctx, stats)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(h.CaseNumber), out)
	})
}

// AdjustWatchCount shifts a case's watcher tally by delta, clamping at zero.
// Subscribes and unsubscribes run concurrently with the tick, so the
// read-modify-write stays inside one transaction.
func (s *Store) AdjustWatchCount(ctx context.Context, caseNumber string, delta int) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.AdjustWatchCount")
	defer span.End()
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(caseStatisticsBucket)
		stats := &board.CaseStatistics{CaseNumber: caseNumber}
		if enc := bkt.Get([]byte(caseNumber)); enc != nil {
			if err := decode(ctx, enc, stats); err != nil {
				return err
			}
		}
		stats.WatchCount += delta
		if stats.WatchCount < 0 {
			stats.WatchCount = 0
		}
		out, err := encode(ctx, stats)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(caseNumber), out)
	})
}
