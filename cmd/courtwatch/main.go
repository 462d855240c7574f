// Package main defines the courtwatch node implementation. The node polls a
// courthouse streaming board, detects per-court change, walks device
// watchlists into push alerts, and serves the board over an HTTP and
// websocket API.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/courtwatch/courtwatch/cmd"
	"github.com/courtwatch/courtwatch/cmd/courtwatch/flags"
	"github.com/courtwatch/courtwatch/config/features"
	"github.com/courtwatch/courtwatch/io/logs"
	"github.com/courtwatch/courtwatch/node"
	"github.com/courtwatch/courtwatch/runtime/debug"
	"github.com/courtwatch/courtwatch/runtime/version"
	joonix "github.com/joonix/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var log = logrus.WithField("prefix", "main")

func startNode(cliCtx *cli.Context) error {
	courtNode, err := node.New(cliCtx)
	if err != nil {
		return err
	}
	courtNode.Start()
	return nil
}

var appFlags = []cli.Flag{
	flags.BoardBaseURLFlag,
	flags.BoardXHRURLFlag,
	flags.ScrapeIntervalFlag,
	flags.APIHostFlag,
	flags.APIPortFlag,
	flags.APICorsDomainFlag,
	flags.MonitoringPortFlag,
	flags.FCMServiceAccountFileFlag,
	flags.FCMProjectIDFlag,
	flags.FCMClientEmailFlag,
	flags.FCMPrivateKeyFlag,
	cmd.MinimalConfigFlag,
	cmd.MaxHistoryPageSizeFlag,
	cmd.VerbosityFlag,
	cmd.DataDirFlag,
	cmd.EnableTracingFlag,
	cmd.TracingProcessNameFlag,
	cmd.TracingEndpointFlag,
	cmd.TraceSampleFractionFlag,
	cmd.MonitoringHostFlag,
	cmd.DisableMonitoringFlag,
	cmd.MaxGoroutines,
	cmd.LogFileName,
	cmd.LogFormat,
	cmd.ClearDB,
	cmd.ForceClearDB,
	cmd.ConfigFileFlag,
	cmd.BoardConfigFileFlag,
	cmd.EnableBackupWebhookFlag,
	cmd.BackupWebhookOutputDir,
	debug.PProfFlag,
	debug.PProfAddrFlag,
	debug.PProfPortFlag,
	debug.MemProfileRateFlag,
	debug.MutexProfileFractionFlag,
	debug.BlockProfileRateFlag,
	debug.CPUProfileFlag,
	debug.TraceFlag,
}

func init() {
	appFlags = cmd.WrapFlags(append(appFlags, features.CourtWatchFlags...))
}

func main() {
	app := cli.App{}
	app.Name = "courtwatch"
	app.Usage = "watches a courthouse streaming board and alerts on watched cases"
	app.Action = startNode
	app.Version = version.GetVersion()
	app.Flags = appFlags

	app.Before = func(ctx *cli.Context) error {
		if err := cmd.ValidateNoArgs(ctx); err != nil {
			return err
		}
		// Load flags from config file, if specified.
		if ctx.IsSet(cmd.ConfigFileFlag.Name) {
			if err := altsrc.InitInputSourceWithContext(
				appFlags,
				altsrc.NewYamlSourceFromFlagFunc(
					cmd.ConfigFileFlag.Name))(ctx); err != nil {
				return err
			}
		}

		verbosity := ctx.String(cmd.VerbosityFlag.Name)
		level, err := logrus.ParseLevel(verbosity)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		format := ctx.String(cmd.LogFormat.Name)
		switch format {
		case "text":
			formatter := new(prefixed.TextFormatter)
			formatter.TimestampFormat = "2006-01-02 15:04:05"
			formatter.FullTimestamp = true
			// If persistent log files are written - we disable the log messages coloring because
			// the colors are ANSI codes and seen as gibberish in the log files.
			formatter.DisableColors = ctx.String(cmd.LogFileName.Name) != ""
			logrus.SetFormatter(formatter)
		case "fluentd":
			logrus.SetFormatter(joonix.NewFormatter())
		case "json":
			logrus.SetFormatter(&logrus.JSONFormatter{})
		default:
			return fmt.Errorf("unknown log format %s", format)
		}

		logFileName := ctx.String(cmd.LogFileName.Name)
		if logFileName != "" {
			if err := logs.ConfigurePersistentLogging(logFileName, format); err != nil {
				log.WithError(err).Error("Failed to configuring logging to disk.")
			}
		}

		runtime.GOMAXPROCS(runtime.NumCPU())
		return debug.Setup(ctx)
	}

	app.After = func(ctx *cli.Context) error {
		debug.Exit(ctx)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
