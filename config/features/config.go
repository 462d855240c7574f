/*
Package features defines which optional behaviors are enabled at runtime,
in order to selectively toggle parts of the pipeline without rebuilding.

The process for implementing new features using this package is as follows:
	1. Add a new CMD flag in flags.go and place it in CourtWatchFlags.
	2. Add a condition for the flag in ConfigureCourtWatch below.
	3. Place any "new" behavior in the `if flagEnabled` statement.
	4. Ensure any tests using the new feature fail if the flag isn't enabled.
	4a. Use the following to enable your flag for tests:
	cfg := &features.Flags{
		DisableBusinessHoursGate: true,
	}
	resetCfg := features.InitWithReset(cfg)
	defer resetCfg()
*/
package features

import (
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "flags")

// Flags is a struct to represent which features the client will perform on runtime.
type Flags struct {
	EnableScraper              bool // EnableScraper schedules board ticks. Off turns the process into a pure read/API node.
	DisableBusinessHoursGate   bool // DisableBusinessHoursGate runs ticks around the clock, for development against replays.
	DisableConditionalRequests bool // DisableConditionalRequests forces full fetches instead of ETag/If-Modified-Since shortcuts.
	DisablePushDispatch        bool // DisablePushDispatch computes alerts and logs them without contacting the push gateway.
}

var featureConfig *Flags

// Get retrieves feature config.
func Get() *Flags {
	if featureConfig == nil {
		return &Flags{EnableScraper: true}
	}
	return featureConfig
}

// Init sets the global config equal to the config that is passed in.
func Init(c *Flags) {
	featureConfig = c
}

// InitWithReset sets the global config and returns function that is used to reset configuration.
func InitWithReset(c *Flags) func() {
	resetFunc := func() {
		Init(&Flags{EnableScraper: true})
	}
	Init(c)
	return resetFunc
}

// ConfigureCourtWatch sets the global config based on what flags are enabled
// for the courtwatch node.
func ConfigureCourtWatch(ctx *cli.Context) {
	complainOnDeprecatedFlags(ctx)
	cfg := &Flags{}
	cfg.EnableScraper = true
	// The scheduler is off only when the value is exactly "false", matching
	// the documented ENABLE_SCRAPER contract.
	if ctx.String(enableScraperFlag.Name) == "false" {
		log.Warn("Board scraping is disabled. No ticks will run.")
		cfg.EnableScraper = false
	}
	if ctx.Bool(disableBusinessHoursGateFlag.Name) {
		log.Warn("Business hours gate is disabled. Ticks will run around the clock.")
		cfg.DisableBusinessHoursGate = true
	}
	if ctx.Bool(disableConditionalRequestsFlag.Name) {
		log.Warn("Conditional requests are disabled. Every tick fetches the full board.")
		cfg.DisableConditionalRequests = true
	}
	if ctx.Bool(disablePushDispatchFlag.Name) {
		log.Warn("Push dispatch is disabled. Alerts will be logged only.")
		cfg.DisablePushDispatch = true
	}
	Init(cfg)
}

func complainOnDeprecatedFlags(ctx *cli.Context) {
	for _, f := range deprecatedFlags {
		if ctx.IsSet(f.Names()[0]) {
			log.Errorf("%s is deprecated and has no effect. Do not use this flag, it will be deleted soon.", f.Names()[0])
		}
	}
}
