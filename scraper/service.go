// Package scraper runs the board pipeline on a fixed cadence: fetch the
// upstream data, parse it into court observations, detect change, record
// history, walk the watchlists, and broadcast the delta. One tick runs at a
// time; every stage downstream of the fetch is owned by that single tick.
package scraper

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/courtwatch/courtwatch/async"
	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/config/features"
	"github.com/courtwatch/courtwatch/config/params"
	"github.com/courtwatch/courtwatch/db"
	"github.com/courtwatch/courtwatch/runtime/logging"
	"github.com/courtwatch/courtwatch/scraper/delta"
	"github.com/courtwatch/courtwatch/scraper/fetch"
	"github.com/courtwatch/courtwatch/scraper/history"
	"github.com/courtwatch/courtwatch/scraper/parse"
	"github.com/courtwatch/courtwatch/scraper/queue"
	"github.com/courtwatch/courtwatch/scraper/watch"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "scraper")

const (
	boardCacheKey  = "courts"
	queuesCacheKey = "queues"
)

// fetcher is the upstream half of a tick. *fetch.Client satisfies it; tests
// substitute a scripted one.
type fetcher interface {
	Fetch(ctx context.Context) (*fetch.Result, error)
}

// broadcaster fans a tick's changed set out to live subscribers.
type broadcaster interface {
	Broadcast(d *board.Delta)
}

// dispatcher delivers one alert for a watchlist.
type dispatcher interface {
	Dispatch(ctx context.Context, w *board.Watchlist, a *board.Alert, now time.Time) error
}

// Config holds the collaborators the node wires into the scraper.
type Config struct {
	Database    db.Database
	Fetcher     fetcher
	Dispatcher  dispatcher
	Broadcaster broadcaster
	// Enabled gates tick scheduling. A disabled scraper leaves the node in
	// read-only mode: the api serves the durable view and snapshots.
	Enabled bool
	// MaxRoutines marks the service unhealthy when the process exceeds this
	// goroutine count. Zero or negative disables the check.
	MaxRoutines int
}

// Service drives the scrape loop and owns all pipeline state between ticks.
type Service struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     *Config
	parser  *parse.Parser
	engine  *delta.Engine
	scribe  *history.Historian
	watcher *watch.Processor
	// boardCache holds the latest tick's courts and queues for read traffic.
	// Entries expire at the staleness cutoff so the api falls back to the
	// durable snapshot instead of serving a dead board.
	boardCache *cache.Cache
	done       chan struct{}

	// Tick guards, touched only by the run loop.
	lockUntil    time.Time
	backoffUntil time.Time

	runError error
}

// NewService builds the scrape pipeline around the given collaborators.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	parser, err := parse.New(params.BoardConfig().BoardBaseURL)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "board page parser")
	}
	engine, err := delta.NewEngine(cfg.Database)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "change detection engine")
	}
	staleAfter := params.BoardConfig().StaleAfter()
	return &Service{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		parser:     parser,
		engine:     engine,
		scribe:     history.NewHistorian(cfg.Database),
		watcher:    watch.NewProcessor(cfg.Database, cfg.Dispatcher),
		boardCache: cache.New(staleAfter, staleAfter),
		done:       make(chan struct{}),
	}, nil
}

// Start begins the tick loop and the snapshot and cleanup chores.
func (s *Service) Start() {
	if !s.cfg.Enabled {
		log.Warn("Scraper disabled, node serves stored data only")
		close(s.done)
		return
	}
	cfg := params.BoardConfig()
	log.WithFields(logrus.Fields{
		"interval":      cfg.ScrapeInterval,
		"businessHours": []int{cfg.BusinessStartHour, cfg.BusinessEndHour},
	}).Info("Starting board scraper")

	async.RunEvery(s.ctx, cfg.SnapshotInterval, s.snapshot)
	async.RunDaily(s.ctx, cfg.CleanupHour, s.cleanup)

	go s.run(time.NewTicker(cfg.ScrapeInterval).C)
}

// Stop ends the loop, waiting out an in-flight tick up to the shutdown grace.
func (s *Service) Stop() error {
	defer s.cancel()
	log.Info("Stopping board scraper")
	select {
	case <-s.done:
	case <-time.After(params.BoardConfig().ShutdownGrace):
		log.Warn("In-flight tick did not finish within shutdown grace")
	}
	return nil
}

// Status reports the last tick error, if any. A failed tick self-heals on
// the next successful one, so this flaps rather than latches.
func (s *Service) Status() error {
	if s.cfg.MaxRoutines > 0 && runtime.NumGoroutine() > s.cfg.MaxRoutines {
		return fmt.Errorf("too many goroutines (%d)", runtime.NumGoroutine())
	}
	return s.runError
}

// CurrentCourts returns the board from the freshest completed tick. The
// second return is false when no tick has completed within the staleness
// window, at which point callers fall back to the durable view.
func (s *Service) CurrentCourts() ([]*board.Court, bool) {
	v, ok := s.boardCache.Get(boardCacheKey)
	if !ok {
		return nil, false
	}
	return v.([]*board.Court), true
}

// Queues returns the per-court pending queues from the freshest tick.
func (s *Service) Queues() (queue.Queues, bool) {
	v, ok := s.boardCache.Get(queuesCacheKey)
	if !ok {
		return nil, false
	}
	return v.(queue.Queues), true
}

func (s *Service) run(ticks <-chan time.Time) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			log.Debug("Context closed, exiting tick loop")
			return
		case now := <-ticks:
			s.tick(now)
		}
	}
}

// tick runs one full pipeline pass. The guards come first: outside business
// hours nothing upstream moves, the lock skips fires that land while a tick
// is still considered live, and the backoff spaces retries after a failure.
func (s *Service) tick(now time.Time) {
	cfg := params.BoardConfig()
	switch {
	case !cfg.WithinBusinessHours(now) && !features.Get().DisableBusinessHoursGate:
		ticksTotal.WithLabelValues("skipped_hours").Inc()
		return
	case now.Before(s.lockUntil):
		ticksTotal.WithLabelValues("skipped_locked").Inc()
		log.Debug("Skipping tick, previous tick still holds the lock")
		return
	case now.Before(s.backoffUntil):
		ticksTotal.WithLabelValues("skipped_backoff").Inc()
		return
	}

	s.lockUntil = now.Add(cfg.TickLockDuration)
	defer func() { s.lockUntil = time.Time{} }()

	start := time.Now()
	outcome, err := s.runPipeline(s.ctx, now)
	tickDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.runError = err
		s.backoffUntil = now.Add(cfg.ErrorBackoff)
		ticksTotal.WithLabelValues("error").Inc()
		log.WithError(err).WithField("backoffUntil", s.backoffUntil).Error("Tick failed")
		return
	}
	s.runError = nil
	s.backoffUntil = time.Time{}
	ticksTotal.WithLabelValues(outcome).Inc()
}

// runPipeline is the body of one tick. It returns the outcome label for the
// tick counter: "ok" for a full pass, "not_modified" for a 304 short-circuit.
func (s *Service) runPipeline(ctx context.Context, now time.Time) (string, error) {
	res, err := s.cfg.Fetcher.Fetch(ctx)
	if err != nil {
		return "", errors.Wrap(err, "fetch board")
	}
	if res.NotModified {
		// Upstream confirmed the board is current, so the cached view stays
		// fresh even though no pipeline work runs.
		s.refreshCaches()
		log.Debug("Board unchanged upstream, skipping tick work")
		return "not_modified", nil
	}

	observations, err := s.parser.Parse(res.Rows, res.PageHTML, now)
	if err != nil {
		return "", errors.Wrap(err, "parse board page")
	}

	diff, err := s.engine.Process(ctx, observations, now)
	if err != nil {
		return "", errors.Wrap(err, "detect board changes")
	}
	changedCourtsGauge.Set(float64(len(diff.Changed)))
	observedCourtsGauge.Set(float64(len(observations)))
	for _, c := range diff.Changed {
		log.WithFields(logging.CourtFields(c)).Debug("Court changed")
	}

	courts := make([]*board.Court, len(observations))
	for i, obs := range observations {
		courts[i] = obs.Court
	}

	if _, err := s.scribe.Record(ctx, courts); err != nil {
		return "", errors.Wrap(err, "record case history")
	}

	queues := queue.Build(courts)
	out, err := s.watcher.Process(ctx, courts, queues, now)
	if err != nil {
		return "", errors.Wrap(err, "process watchlists")
	}
	if out.Alerts > 0 || out.Failures > 0 {
		log.WithFields(logrus.Fields{
			"processed": out.Processed,
			"alerts":    out.Alerts,
			"failures":  out.Failures,
		}).Info("Watchlist pass complete")
	}

	s.boardCache.SetDefault(boardCacheKey, courts)
	s.boardCache.SetDefault(queuesCacheKey, queues)

	if len(diff.Changed) > 0 && s.cfg.Broadcaster != nil {
		s.cfg.Broadcaster.Broadcast(board.NewDelta(diff.Changed, now))
	}
	return "ok", nil
}

// refreshCaches re-arms the board cache expiry without changing its contents.
func (s *Service) refreshCaches() {
	if v, ok := s.boardCache.Get(boardCacheKey); ok {
		s.boardCache.SetDefault(boardCacheKey, v)
	}
	if v, ok := s.boardCache.Get(queuesCacheKey); ok {
		s.boardCache.SetDefault(queuesCacheKey, v)
	}
}

// snapshot persists the durable visible board so reads survive restarts and
// cache expiry, then refreshes the bucket gauges.
func (s *Service) snapshot() {
	ctx, cancelFn := context.WithTimeout(s.ctx, params.BoardConfig().FetchTimeout)
	defer cancelFn()
	visible, err := s.cfg.Database.VisibleCourts(ctx)
	if err != nil {
		log.WithError(err).Error("Could not read durable board for snapshot")
		return
	}
	if len(visible) == 0 {
		return
	}
	courts := make([]*board.Court, 0, len(visible))
	for _, entry := range visible {
		courts = append(courts, entry.Data)
	}
	if err := s.cfg.Database.SaveSnapshot(ctx, &board.Snapshot{Courts: courts, TakenAt: time.Now()}); err != nil {
		log.WithError(err).Error("Could not save board snapshot")
		return
	}
	if err := s.cfg.Database.UpdateBucketStats(ctx); err != nil {
		log.WithError(err).Debug("Could not refresh bucket stats")
	}
	log.WithField("courts", len(courts)).Debug("Saved board snapshot")
}

// cleanup prunes notification logs and snapshots past their retention.
func (s *Service) cleanup() {
	cfg := params.BoardConfig()
	ctx, cancelFn := context.WithTimeout(s.ctx, time.Minute)
	defer cancelFn()
	now := time.Now()
	logs, err := s.cfg.Database.PruneNotificationLogs(ctx, now.Add(-cfg.NotificationLogTTL))
	if err != nil {
		log.WithError(err).Error("Could not prune notification logs")
	}
	snaps, err := s.cfg.Database.PruneSnapshots(ctx, now.Add(-cfg.SnapshotRetention))
	if err != nil {
		log.WithError(err).Error("Could not prune snapshots")
	}
	log.WithFields(logrus.Fields{
		"notificationLogs": logs,
		"snapshots":        snaps,
	}).Info("Daily cleanup complete")
}
