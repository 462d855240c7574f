// Package delta detects per-court change between consecutive ticks. It keeps
// a cheap in-memory signature per court for dispatch skipping and maintains
// the durable per-court view, whose canonical hash records the last real
// change independently of scrape cadence.
package delta

import (
	"context"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/config/params"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "delta")

// courtStore is the slice of the board database the engine writes through.
type courtStore interface {
	CurrentCourts(ctx context.Context) ([]*board.CurrentCourt, error)
	SaveCurrentCourts(ctx context.Context, entries []*board.CurrentCourt) error
	TouchCurrentCourts(ctx context.Context, courtCodes []string, checkedAt time.Time) error
	MarkCourtsMissing(ctx context.Context, courtCodes []string) error
}

// Engine compares each tick's observations against the previous tick. It is
// not safe for concurrent use; the scraper's single-writer tick is the only
// caller.
type Engine struct {
	store      courtStore
	courts     *lru.Cache // courtCode -> *board.Court
	signatures *lru.Cache // courtCode -> board.Signature
}

// Result is the outcome of one tick's change detection. Changed holds the
// courts whose signature moved since the previous tick, Unchanged the codes
// refreshed in place, and Missing the durable codes absent from the tick.
type Result struct {
	Changed   []*board.Court
	Unchanged []string
	Missing   []string
}

// NewEngine returns an engine writing through the given store. In-memory
// state is bounded to the configured board size; the durable view is the
// source of truth across restarts.
func NewEngine(store courtStore) (*Engine, error) {
	size := params.BoardConfig().CurrentCourtMaxSize
	courts, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "new court cache")
	}
	signatures, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "new signature cache")
	}
	return &Engine{store: store, courts: courts, signatures: signatures}, nil
}

// Process folds one tick's observations into the engine. Courts matching
// their previous signature only get a durable touch; the rest are upserted
// with a fresh canonical hash when their content really moved. Durable
// courts absent from the tick accrue a missing count.
func (e *Engine) Process(ctx context.Context, observed []*board.Observation, now time.Time) (*Result, error) {
	existing, err := e.store.CurrentCourts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read durable court view")
	}
	durable := make(map[string]*board.CurrentCourt, len(existing))
	for _, entry := range existing {
		durable[entry.CourtCode] = entry
	}

	res := &Result{}
	seen := make(map[string]struct{}, len(observed))
	var upserts []*board.CurrentCourt
	for _, obs := range observed {
		code := obs.Court.CourtCode
		seen[code] = struct{}{}
		sig := obs.Signature()
		if prev, ok := e.signatures.Get(code); ok && prev.(board.Signature).Equal(sig) {
			res.Unchanged = append(res.Unchanged, code)
			e.courts.Add(code, obs.Court)
			continue
		}
		e.courts.Add(code, obs.Court)
		e.signatures.Add(code, sig)
		res.Changed = append(res.Changed, obs.Court)

		entry, err := durableEntry(durable[code], obs.Court, now)
		if err != nil {
			return nil, errors.Wrapf(err, "hash court %s", code)
		}
		upserts = append(upserts, entry)
	}

	for code := range durable {
		if _, ok := seen[code]; !ok {
			res.Missing = append(res.Missing, code)
		}
	}

	if len(upserts) > 0 {
		if err := e.store.SaveCurrentCourts(ctx, upserts); err != nil {
			return nil, errors.Wrap(err, "save changed courts")
		}
	}
	if len(res.Unchanged) > 0 {
		if err := e.store.TouchCurrentCourts(ctx, res.Unchanged, now); err != nil {
			return nil, errors.Wrap(err, "touch unchanged courts")
		}
	}
	if len(res.Missing) > 0 {
		if err := e.store.MarkCourtsMissing(ctx, res.Missing); err != nil {
			return nil, errors.Wrap(err, "mark missing courts")
		}
	}

	log.WithFields(logrus.Fields{
		"changed":   len(res.Changed),
		"unchanged": len(res.Unchanged),
		"missing":   len(res.Missing),
	}).Debug("Tick change detection complete")
	return res, nil
}

// LastCourt returns the court observed for a code on the most recent tick
// that carried it, or nil when the code has aged out or was never seen.
func (e *Engine) LastCourt(courtCode string) *board.Court {
	v, ok := e.courts.Get(courtCode)
	if !ok {
		return nil
	}
	return v.(*board.Court)
}

// durableEntry merges a fresh observation into the durable view. The
// canonical hash and ChangedAt move only when the court's content really
// differs; a signature flip caused by markup noise keeps the previous ones.
func durableEntry(prev *board.CurrentCourt, court *board.Court, now time.Time) (*board.CurrentCourt, error) {
	hash, err := court.DataHash()
	if err != nil {
		return nil, err
	}
	entry := &board.CurrentCourt{
		CourtCode:    court.CourtCode,
		Data:         court,
		DataHash:     hash,
		CheckedAt:    now,
		ChangedAt:    now,
		MissingCount: 0,
		IsVisible:    true,
	}
	if prev != nil && prev.DataHash == hash {
		entry.ChangedAt = prev.ChangedAt
	}
	return entry, nil
}
