package features

import (
	"github.com/urfave/cli/v2"
)

var (
	enableScraperFlag = &cli.StringFlag{
		Name:    "enable-scraper",
		Usage:   "Schedule periodic board scraping. Scheduling is off only when the value is exactly \"false\".",
		Value:   "true",
		EnvVars: []string{"ENABLE_SCRAPER"},
	}
	disableBusinessHoursGateFlag = &cli.BoolFlag{
		Name:  "disable-business-hours-gate",
		Usage: "Run scrape ticks outside courthouse hours. Useful against recorded boards.",
	}
	disableConditionalRequestsFlag = &cli.BoolFlag{
		Name:  "disable-conditional-requests",
		Usage: "Do not send If-None-Match/If-Modified-Since headers upstream.",
	}
	disablePushDispatchFlag = &cli.BoolFlag{
		Name:  "disable-push-dispatch",
		Usage: "Compute and log alerts without sending push notifications.",
	}
)

// CourtWatchFlags contains a list of all the feature flags that apply to the courtwatch node.
var CourtWatchFlags = append(deprecatedFlags, []cli.Flag{
	enableScraperFlag,
	disableBusinessHoursGateFlag,
	disableConditionalRequestsFlag,
	disablePushDispatchFlag,
}...)
