// Package flags defines the command line flags specific to the courtwatch
// node binary. Options the mobile deployments configure through the
// environment carry their historical env var names.
package flags

import (
	"github.com/urfave/cli/v2"
)

var (
	// BoardBaseURLFlag points the scraper at the streaming board page.
	BoardBaseURLFlag = &cli.StringFlag{
		Name:    "board-base-url",
		Usage:   "URL of the courthouse streaming board page with the card DOM",
		EnvVars: []string{"COURT_BASE_URL"},
	}
	// BoardXHRURLFlag points the scraper at the JSON row endpoint.
	BoardXHRURLFlag = &cli.StringFlag{
		Name:    "board-xhr-url",
		Usage:   "URL of the courthouse XHR endpoint serving per-court JSON rows",
		EnvVars: []string{"COURT_XHR_URL"},
	}
	// ScrapeIntervalFlag overrides the tick cadence. The value is in
	// milliseconds, matching the historical env contract.
	ScrapeIntervalFlag = &cli.IntFlag{
		Name:    "scrape-interval",
		Usage:   "Milliseconds between scrape ticker fires",
		EnvVars: []string{"SCRAPER_INTERVAL"},
	}
	// APIHostFlag defines the address the read API binds to.
	APIHostFlag = &cli.StringFlag{
		Name:  "api-host",
		Usage: "Host on which the read and subscription API listens",
		Value: "127.0.0.1",
	}
	// APIPortFlag defines the port the read API binds to.
	APIPortFlag = &cli.IntFlag{
		Name:  "api-port",
		Usage: "Port on which the read and subscription API listens",
		Value: 3000,
	}
	// APICorsDomainFlag defines the origins allowed to call the read API.
	// Use commas to separate multiple domains.
	APICorsDomainFlag = &cli.StringFlag{
		Name:  "api-cors-domain",
		Usage: "Comma separated list of domains from which to accept cross origin requests",
		Value: "*",
	}
	// MonitoringPortFlag defines the port used by the prometheus service.
	MonitoringPortFlag = &cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port used to listen and respond metrics for prometheus",
		Value: 8080,
	}
	// FCMServiceAccountFileFlag supplies push credentials as the JSON key
	// file the Firebase console exports.
	FCMServiceAccountFileFlag = &cli.StringFlag{
		Name:    "fcm-service-account-file",
		Usage:   "Path to a Firebase service account JSON key file for push delivery",
		EnvVars: []string{"FCM_SERVICE_ACCOUNT_FILE"},
	}
	// FCMProjectIDFlag supplies push credentials as discrete values, the
	// shape used when they arrive through the environment.
	FCMProjectIDFlag = &cli.StringFlag{
		Name:    "fcm-project-id",
		Usage:   "Firebase project id for push delivery",
		EnvVars: []string{"FCM_PROJECT_ID"},
	}
	// FCMClientEmailFlag is the service account email of the credential triple.
	FCMClientEmailFlag = &cli.StringFlag{
		Name:    "fcm-client-email",
		Usage:   "Firebase service account client email for push delivery",
		EnvVars: []string{"FCM_CLIENT_EMAIL"},
	}
	// FCMPrivateKeyFlag is the service account key of the credential triple.
	// Escaped newlines are tolerated.
	FCMPrivateKeyFlag = &cli.StringFlag{
		Name:    "fcm-private-key",
		Usage:   "Firebase service account private key for push delivery",
		EnvVars: []string{"FCM_PRIVATE_KEY"},
	}
)
