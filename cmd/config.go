package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "cmd")

// DefaultMaxHistoryPageSize bounds the limit parameter on case history reads.
const DefaultMaxHistoryPageSize = 500

// Flags is a struct to represent which features the client will perform on
// runtime.
type Flags struct {
	// MinimalConfig runs the node with the minimal board parameters.
	MinimalConfig bool
	// MaxHistoryPageSize caps the limit parameter on case history requests.
	MaxHistoryPageSize int
}

var sharedConfig *Flags

// Get retrieves the shared cmd config.
func Get() *Flags {
	if sharedConfig == nil {
		return &Flags{MaxHistoryPageSize: DefaultMaxHistoryPageSize}
	}
	return sharedConfig
}

// Init sets the global config equal to the config that is passed in.
func Init(c *Flags) {
	sharedConfig = c
}

// InitWithReset sets the global config and returns a function that is used to
// reset the configuration.
func InitWithReset(c *Flags) func() {
	resetFunc := func() {
		Init(&Flags{MaxHistoryPageSize: DefaultMaxHistoryPageSize})
	}
	Init(c)
	return resetFunc
}

// ConfigureCourtwatch sets the global config based on what flags are enabled
// for the courtwatch node.
func ConfigureCourtwatch(ctx *cli.Context) {
	cfg := Get()
	if ctx.Bool(MinimalConfigFlag.Name) {
		log.Warn("Using minimal board config")
		cfg.MinimalConfig = true
	}
	if ctx.IsSet(MaxHistoryPageSizeFlag.Name) {
		cfg.MaxHistoryPageSize = ctx.Int(MaxHistoryPageSizeFlag.Name)
		log.Warnf("Starting node with max history page size of %d", cfg.MaxHistoryPageSize)
	}
	Init(cfg)
}
