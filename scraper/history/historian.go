// Package history records each court's case progression across ticks. A
// history row is written only when a court's change-relevant fields moved;
// per-case statistics accumulate on every sighting.
package history

import (
	"context"

	"github.com/courtwatch/courtwatch/board"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "history")

// historyStore is the slice of the board database the historian writes.
type historyStore interface {
	SaveCaseHistories(ctx context.Context, entries []*board.CaseHistory) (int, error)
	RecordCaseObservation(ctx context.Context, h *board.CaseHistory) error
}

// courtState is the change-relevant projection of a court card. History
// emission compares exactly these three fields.
type courtState struct {
	caseNumber string
	status     board.CaseStatus
	position   *int
}

func (s courtState) equal(o courtState) bool {
	if s.caseNumber != o.caseNumber || s.status != o.status {
		return false
	}
	if (s.position == nil) != (o.position == nil) {
		return false
	}
	return s.position == nil || *s.position == *o.position
}

// Historian tracks the last recorded state per court number. The map is
// process-local and mutated only inside a tick; after a restart the durable
// uniqueness key still keeps replays idempotent.
type Historian struct {
	store historyStore
	last  map[string]courtState
}

// NewHistorian returns a historian writing through the given store.
func NewHistorian(store historyStore) *Historian {
	return &Historian{store: store, last: make(map[string]courtState)}
}

// Record folds one tick's courts into durable history and statistics. It
// returns the number of genuinely new history rows. The in-memory state
// commits only after the writes succeed, so a failed tick re-emits rather
// than silently dropping a transition.
func (h *Historian) Record(ctx context.Context, courts []*board.Court) (int, error) {
	staged := make(map[string]courtState, len(courts))
	var events []*board.CaseHistory
	for _, c := range courts {
		if c.CourtNumber == "" {
			continue
		}
		next := courtState{caseNumber: c.CaseNumber, status: c.CaseStatus, position: c.QueuePosition}
		staged[c.CourtNumber] = next
		if prev, ok := h.last[c.CourtNumber]; ok && prev.equal(next) {
			continue
		}
		if c.CaseNumber == "" {
			// The card went blank. Remember it so the next case registers
			// as a change, but an empty case number is nothing to record.
			continue
		}
		events = append(events, observation(c))
	}

	inserted := 0
	if len(events) > 0 {
		var err error
		inserted, err = h.store.SaveCaseHistories(ctx, events)
		if err != nil {
			return 0, errors.Wrap(err, "save case histories")
		}
		historyEventsTotal.Add(float64(len(events)))
	}

	for _, c := range courts {
		if c.CourtNumber == "" || c.CaseNumber == "" {
			continue
		}
		if err := h.store.RecordCaseObservation(ctx, observation(c)); err != nil {
			return inserted, errors.Wrapf(err, "record statistics for %s", c.CaseNumber)
		}
	}

	for court, state := range staged {
		h.last[court] = state
	}
	if len(events) > 0 {
		log.WithFields(logrus.Fields{
			"events":   len(events),
			"inserted": inserted,
		}).Debug("Recorded case history")
	}
	return inserted, nil
}

func observation(c *board.Court) *board.CaseHistory {
	return &board.CaseHistory{
		CaseNumber:  c.CaseNumber,
		Status:      c.CaseStatus,
		Position:    c.QueuePosition,
		CourtNumber: c.CourtNumber,
		JudgeName:   c.JudgeName,
		ScrapedAt:   c.ScrapedAt,
	}
}
