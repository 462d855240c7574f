// Package node is the main service which launches a courtwatch node and
// manages the lifecycle of all its associated services at runtime, such as
// the scraper, alert dispatch, websocket fan-out and the read API,
// gracefully closing them if the process ends.
package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/courtwatch/courtwatch/api"
	"github.com/courtwatch/courtwatch/broadcast"
	"github.com/courtwatch/courtwatch/cmd"
	"github.com/courtwatch/courtwatch/cmd/courtwatch/flags"
	"github.com/courtwatch/courtwatch/config/features"
	"github.com/courtwatch/courtwatch/config/params"
	"github.com/courtwatch/courtwatch/db"
	"github.com/courtwatch/courtwatch/db/kv"
	"github.com/courtwatch/courtwatch/monitoring/backup"
	"github.com/courtwatch/courtwatch/monitoring/prometheus"
	"github.com/courtwatch/courtwatch/monitoring/tracing"
	"github.com/courtwatch/courtwatch/notify"
	"github.com/courtwatch/courtwatch/notify/fcm"
	"github.com/courtwatch/courtwatch/runtime"
	"github.com/courtwatch/courtwatch/runtime/debug"
	"github.com/courtwatch/courtwatch/runtime/prereqs"
	"github.com/courtwatch/courtwatch/runtime/version"
	"github.com/courtwatch/courtwatch/scraper"
	"github.com/courtwatch/courtwatch/scraper/fetch"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "node")

// CourtNode defines a struct that handles the services running a courtwatch
// board watcher. It handles the lifecycle of the entire system and registers
// services to a service registry.
type CourtNode struct {
	cliCtx   *cli.Context
	ctx      context.Context
	cancel   context.CancelFunc
	services *runtime.ServiceRegistry
	lock     sync.RWMutex
	stop     chan struct{} // Channel to wait for termination notifications.
	db       db.Database
}

// New creates a new node instance, sets up configuration options, and
// registers every required service to the node.
func New(cliCtx *cli.Context) (*CourtNode, error) {
	if err := tracing.Setup(
		"courtwatch", // service name
		cliCtx.String(cmd.TracingProcessNameFlag.Name),
		cliCtx.String(cmd.TracingEndpointFlag.Name),
		cliCtx.Float64(cmd.TraceSampleFractionFlag.Name),
		cliCtx.Bool(cmd.EnableTracingFlag.Name),
	); err != nil {
		return nil, err
	}

	// Warn if user's platform is not supported.
	prereqs.WarnIfPlatformNotSupported(cliCtx.Context)

	features.ConfigureCourtWatch(cliCtx)
	cmd.ConfigureCourtwatch(cliCtx)

	if cliCtx.IsSet(cmd.BoardConfigFileFlag.Name) {
		params.LoadBoardConfigFile(cliCtx.String(cmd.BoardConfigFileFlag.Name))
	}
	if cmd.Get().MinimalConfig {
		params.OverrideBoardConfig(params.MinimalBoardConfig())
	}
	configureBoard(cliCtx)

	registry := runtime.NewServiceRegistry()

	ctx, cancel := context.WithCancel(cliCtx.Context)
	node := &CourtNode{
		cliCtx:   cliCtx,
		ctx:      ctx,
		cancel:   cancel,
		services: registry,
		stop:     make(chan struct{}),
	}

	if err := node.startDB(cliCtx); err != nil {
		return nil, err
	}

	if err := node.registerBroadcastHub(); err != nil {
		return nil, err
	}

	if err := node.registerScraperService(cliCtx); err != nil {
		return nil, err
	}

	if err := node.registerAPIService(cliCtx); err != nil {
		return nil, err
	}

	if !cliCtx.Bool(cmd.DisableMonitoringFlag.Name) {
		if err := node.registerPrometheusService(cliCtx); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// configureBoard applies command line overrides on top of the active board
// configuration. Flags win over the config file and the defaults.
func configureBoard(cliCtx *cli.Context) {
	c := params.BoardConfig().Copy()
	if cliCtx.IsSet(flags.BoardBaseURLFlag.Name) {
		c.BoardBaseURL = cliCtx.String(flags.BoardBaseURLFlag.Name)
	}
	if cliCtx.IsSet(flags.BoardXHRURLFlag.Name) {
		c.BoardXHRURL = cliCtx.String(flags.BoardXHRURLFlag.Name)
	}
	if cliCtx.IsSet(flags.ScrapeIntervalFlag.Name) {
		// The historical environment contract counts milliseconds.
		c.ScrapeInterval = time.Duration(cliCtx.Int(flags.ScrapeIntervalFlag.Name)) * time.Millisecond
	}
	params.OverrideBoardConfig(c)
}

// Start the CourtNode and kicks off every registered service.
func (c *CourtNode) Start() {
	c.lock.Lock()

	log.WithFields(logrus.Fields{
		"version": version.GetVersion(),
	}).Info("Starting courtwatch node")

	c.services.StartAll()

	stop := c.stop
	c.lock.Unlock()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Info("Got interrupt, shutting down...")
		debug.Exit(c.cliCtx) // Ensure trace and CPU profile data are flushed.
		go c.Close()
		for i := 10; i > 0; i-- {
			<-sigc
			if i > 1 {
				log.WithField("times", i-1).Info("Already shutting down, interrupt more to panic")
			}
		}
		panic("Panic closing the courtwatch node")
	}()

	// Wait for stop channel to be closed.
	<-stop
}

// Close handles graceful shutdown of the system.
func (c *CourtNode) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()

	log.Info("Stopping courtwatch node")
	c.services.StopAll()
	if err := c.db.Close(); err != nil {
		log.Errorf("Failed to close database: %v", err)
	}
	c.cancel()
	close(c.stop)
}

func (c *CourtNode) startDB(cliCtx *cli.Context) error {
	baseDir := cliCtx.String(cmd.DataDirFlag.Name)
	dbPath := filepath.Join(baseDir, kv.BoardNodeDbDirName)
	clearDBRequested := cliCtx.Bool(cmd.ClearDB.Name)
	forceClearDB := cliCtx.Bool(cmd.ForceClearDB.Name)

	log.WithField("databasePath", dbPath).Info("Checking DB")

	d, err := db.NewDB(c.ctx, dbPath)
	if err != nil {
		return err
	}
	clearDBConfirmed := false
	if clearDBRequested && !forceClearDB {
		actionText := "This will delete your courtwatch database stored in your data directory. " +
			"Your database backups will not be removed - do you want to proceed? (Y/N)"
		deniedText := "Database will not be deleted. No changes have been made."
		clearDBConfirmed, err = cmd.ConfirmAction(actionText, deniedText)
		if err != nil {
			return err
		}
	}
	if clearDBConfirmed || forceClearDB {
		log.Warning("Removing database")
		if err := d.Close(); err != nil {
			return errors.Wrap(err, "could not close db prior to clearing")
		}
		if err := d.ClearDB(); err != nil {
			return errors.Wrap(err, "could not clear database")
		}
		d, err = db.NewDB(c.ctx, dbPath)
		if err != nil {
			return errors.Wrap(err, "could not create new database")
		}
	}

	c.db = d
	return nil
}

func (c *CourtNode) registerBroadcastHub() error {
	return c.services.RegisterService(broadcast.NewHub())
}

func (c *CourtNode) registerScraperService(cliCtx *cli.Context) error {
	boardCfg := params.BoardConfig()
	fetcher, err := fetch.NewClient(boardCfg.BoardBaseURL, boardCfg.BoardXHRURL)
	if err != nil {
		return err
	}

	sender, err := c.pushSender(cliCtx)
	if err != nil {
		return err
	}

	var hub *broadcast.Hub
	if err := c.services.FetchService(&hub); err != nil {
		return err
	}

	svc, err := scraper.NewService(c.ctx, &scraper.Config{
		Database:    c.db,
		Fetcher:     fetcher,
		Dispatcher:  notify.NewDispatcher(sender, c.db),
		Broadcaster: hub,
		Enabled:     features.Get().EnableScraper,
		MaxRoutines: cliCtx.Int(cmd.MaxGoroutines.Name),
	})
	if err != nil {
		return err
	}
	return c.services.RegisterService(svc)
}

// pushSender selects the alert delivery backend from the configured
// credentials. Without credentials the node still walks the watchlists and
// records deliveries, it just logs instead of contacting the push gateway.
func (c *CourtNode) pushSender(cliCtx *cli.Context) (notify.Sender, error) {
	if features.Get().DisablePushDispatch {
		return notify.LogSender{}, nil
	}
	if cliCtx.IsSet(flags.FCMServiceAccountFileFlag.Name) {
		return fcm.NewClientFromFile(c.ctx, cliCtx.String(flags.FCMServiceAccountFileFlag.Name))
	}
	projectID := cliCtx.String(flags.FCMProjectIDFlag.Name)
	clientEmail := cliCtx.String(flags.FCMClientEmailFlag.Name)
	privateKey := cliCtx.String(flags.FCMPrivateKeyFlag.Name)
	if projectID != "" || clientEmail != "" || privateKey != "" {
		return fcm.NewClient(c.ctx, projectID, clientEmail, privateKey)
	}
	log.Warn("No push credentials configured, alerts will be logged only")
	return notify.LogSender{}, nil
}

func (c *CourtNode) registerAPIService(cliCtx *cli.Context) error {
	var scraperService *scraper.Service
	if err := c.services.FetchService(&scraperService); err != nil {
		return err
	}
	var hub *broadcast.Hub
	if err := c.services.FetchService(&hub); err != nil {
		return err
	}
	svc := api.NewService(c.ctx, &api.Config{
		Host:           cliCtx.String(flags.APIHostFlag.Name),
		Port:           cliCtx.Int(flags.APIPortFlag.Name),
		AllowedOrigins: strings.Split(cliCtx.String(flags.APICorsDomainFlag.Name), ","),
		Database:       c.db,
		Board:          scraperService,
		WSHandler:      hub,
	})
	return c.services.RegisterService(svc)
}

func (c *CourtNode) registerPrometheusService(cliCtx *cli.Context) error {
	var additionalHandlers []prometheus.Handler
	if cliCtx.IsSet(cmd.EnableBackupWebhookFlag.Name) {
		additionalHandlers = append(
			additionalHandlers,
			prometheus.Handler{
				Path:    "/db/backup",
				Handler: backup.Handler(c.db, cliCtx.String(cmd.BackupWebhookOutputDir.Name)),
			},
		)
	}

	service := prometheus.NewService(
		fmt.Sprintf("%s:%d", cliCtx.String(cmd.MonitoringHostFlag.Name), cliCtx.Int(flags.MonitoringPortFlag.Name)),
		c.services,
		additionalHandlers...,
	)
	hook := prometheus.NewLogrusCollector()
	logrus.AddHook(hook)
	return c.services.RegisterService(service)
}
