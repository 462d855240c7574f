// Package queue rebuilds the per-court pending queues from one tick's
// courts. Queues are derived entirely from the tick: the position of a case
// can move even when its own card did not change.
package queue

import (
	"sort"
	"strconv"

	"github.com/courtwatch/courtwatch/board"
)

// Queue is one court's tick view: the ordered pending list and the case on
// the bench right now, if any.
type Queue struct {
	CourtNumber string         `json:"courtNumber"`
	Pending     []*board.Court `json:"pending"`
	CurrentCase *board.Court   `json:"currentCase,omitempty"`
}

// Queues maps court numbers to their per-tick queue view.
type Queues map[string]*Queue

// Build groups the tick's courts by court number. Pending membership
// requires a queue position and a non-terminal status; in-session and
// sitting-over courts never wait in line. Courts without a court number are
// excluded entirely.
func Build(courts []*board.Court) Queues {
	queues := make(Queues)
	for _, c := range courts {
		if c.CourtNumber == "" {
			continue
		}
		q, ok := queues[c.CourtNumber]
		if !ok {
			q = &Queue{CourtNumber: c.CourtNumber}
			queues[c.CourtNumber] = q
		}
		if c.QueuePosition != nil && c.CaseStatus != board.StatusInSession && c.CaseStatus != board.StatusSittingOver {
			q.Pending = append(q.Pending, c)
		}
		if q.CurrentCase == nil && c.CaseStatus == board.StatusInSession {
			q.CurrentCase = c
		}
	}
	for _, q := range queues {
		pending := q.Pending
		sort.SliceStable(pending, func(i, j int) bool {
			return *pending[i].QueuePosition < *pending[j].QueuePosition
		})
	}
	return queues
}

// Position returns the 1-based place of caseNumber in the queue's pending
// list, or nil when the case is not waiting in this queue.
func (q *Queue) Position(caseNumber string) *int {
	if q == nil || caseNumber == "" {
		return nil
	}
	for i, c := range q.Pending {
		if c.CaseNumber == caseNumber {
			return board.IntPtr(i + 1)
		}
	}
	return nil
}

// Sorted returns the queues ordered by court number, numerically when both
// labels parse as integers. The map itself stays the lookup surface for the
// watch pipeline; the slice is for API consumers.
func (qs Queues) Sorted() []*Queue {
	out := make([]*Queue, 0, len(qs))
	for _, q := range qs {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		return courtNumberLess(out[i].CourtNumber, out[j].CourtNumber)
	})
	return out
}

func courtNumberLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
