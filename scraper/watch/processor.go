// Package watch runs the per-tick watchlist state machine: it locates each
// watched case on the board, classifies how close it is to being heard, and
// turns state transitions into push alerts under the per-watchlist cooldown.
package watch

import (
	"context"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/config/params"
	"github.com/courtwatch/courtwatch/scraper/queue"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "watch")

// watchStore is the slice of the board database the processor mutates.
type watchStore interface {
	ActiveWatchlists(ctx context.Context) ([]*board.Watchlist, error)
	SaveWatchlist(ctx context.Context, w *board.Watchlist) error
}

// alertDispatcher delivers one alert for a watchlist. A non-nil error means
// the alert did not reach the device and the watchlist's notification state
// must not advance.
type alertDispatcher interface {
	Dispatch(ctx context.Context, w *board.Watchlist, a *board.Alert, now time.Time) error
}

// Processor applies one tick's board to every active watchlist. Watchlists
// are processed sequentially: the push gateway is spared bursts and each
// document update stays race-free without locks.
type Processor struct {
	store      watchStore
	dispatcher alertDispatcher
}

// Outcome counts what one tick's watchlist pass did.
type Outcome struct {
	Processed int
	Alerts    int
	Failures  int
}

// NewProcessor wires the state machine to its store and alert sink.
func NewProcessor(store watchStore, dispatcher alertDispatcher) *Processor {
	return &Processor{store: store, dispatcher: dispatcher}
}

// Process walks every active watchlist against the tick's full court set.
// The full set matters: a watched case can be visually unchanged while its
// queue position moved because of other cards. Failures on one watchlist
// never stop the rest.
func (p *Processor) Process(ctx context.Context, courts []*board.Court, queues queue.Queues, now time.Time) (*Outcome, error) {
	watchlists, err := p.store.ActiveWatchlists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read active watchlists")
	}

	byCase := make(map[string]*board.Court, len(courts))
	for _, c := range courts {
		if c.CaseNumber == "" {
			continue
		}
		if _, ok := byCase[c.CaseNumber]; !ok {
			byCase[c.CaseNumber] = c
		}
	}

	out := &Outcome{}
	for _, w := range watchlists {
		sent, err := p.processOne(ctx, w, byCase, queues, now)
		out.Processed++
		watchlistsProcessedTotal.Inc()
		if sent {
			out.Alerts++
		}
		if err != nil {
			out.Failures++
			watchlistFailuresTotal.Inc()
			log.WithError(err).WithFields(logrus.Fields{
				"watchlistId": w.ID,
				"caseNumber":  w.CaseNumber,
			}).Error("Could not process watchlist")
		}
	}
	return out, nil
}

func (p *Processor) processOne(ctx context.Context, w *board.Watchlist, byCase map[string]*board.Court, queues queue.Queues, now time.Time) (bool, error) {
	cfg := params.BoardConfig()
	court, found := byCase[w.CaseNumber]
	if !found {
		return p.processMissing(ctx, w, now, cfg)
	}

	w.MissCount = 0
	position := queues[court.CourtNumber].Position(w.CaseNumber)
	velocity := 0
	if position != nil && w.LastSeenPosition != nil {
		velocity = *w.LastSeenPosition - *position
	}

	sent := false
	newState, alertType := classify(court.CaseStatus, position)
	if newState != board.WatchNone && newState != w.LastSeenStatus &&
		w.Settings.Allows(alertType) && w.CooldownPassed(now, cfg.NotificationCooldown) {
		alert := &board.Alert{
			Type:        alertType,
			CaseNumber:  w.CaseNumber,
			CourtNumber: court.CourtNumber,
			JudgeName:   court.JudgeName,
			Position:    position,
			Velocity:    velocity,
			StreamURL:   court.StreamURL,
		}
		if err := p.dispatcher.Dispatch(ctx, w, alert, now); err != nil {
			// The transition stays pending: an undelivered alert must not
			// advance lastSeenStatus or burn the cooldown.
			alertSendFailuresTotal.Inc()
			log.WithError(err).WithFields(logrus.Fields{
				"watchlistId": w.ID,
				"caseNumber":  w.CaseNumber,
				"alertType":   alertType,
			}).Warn("Could not deliver alert")
		} else {
			w.LastSeenStatus = newState
			w.LastNotificationTime = now
			alertsSentTotal.WithLabelValues(string(alertType)).Inc()
			sent = true
		}
	}

	w.LastSeenPosition = position
	w.LastSeenCourt = court.CourtNumber
	return sent, p.store.SaveWatchlist(ctx, w)
}

// processMissing handles a watched case absent from the tick. Absence only
// means completion once it has lasted the full miss threshold; a single
// flaky fetch must not end a hearing.
func (p *Processor) processMissing(ctx context.Context, w *board.Watchlist, now time.Time, cfg *params.CourtBoardConfig) (bool, error) {
	w.MissCount++
	sent := false
	if w.MissCount >= cfg.WatchMissThreshold &&
		w.LastSeenStatus != board.WatchCompleted &&
		w.Settings.Completed &&
		w.CooldownPassed(now, cfg.NotificationCooldown) {
		alert := &board.Alert{
			Type:        board.AlertCompleted,
			CaseNumber:  w.CaseNumber,
			CourtNumber: w.LastSeenCourt,
		}
		if err := p.dispatcher.Dispatch(ctx, w, alert, now); err != nil {
			alertSendFailuresTotal.Inc()
			log.WithError(err).WithFields(logrus.Fields{
				"watchlistId": w.ID,
				"caseNumber":  w.CaseNumber,
			}).Warn("Could not deliver completion alert")
		} else {
			w.LastSeenStatus = board.WatchCompleted
			w.LastNotificationTime = now
			alertsSentTotal.WithLabelValues(string(board.AlertCompleted)).Inc()
			sent = true
		}
	}
	return sent, p.store.SaveWatchlist(ctx, w)
}

// classify maps a case's board presence to the watch state ladder. The first
// matching rule wins; a case on the bench outranks any queue position.
func classify(status board.CaseStatus, position *int) (board.WatchState, board.AlertType) {
	switch {
	case status == board.StatusInSession:
		return board.WatchInSession, board.AlertInSession
	case position == nil:
		return board.WatchNone, ""
	case *position == 1:
		return board.WatchNext, board.AlertApproaching
	case *position <= 3:
		return board.WatchVeryNear, board.AlertApproaching
	case *position <= 10:
		return board.WatchNear, board.AlertEarlyWarning
	default:
		return board.WatchFar, board.AlertEarlyWarning
	}
}
