package features

import "github.com/urfave/cli/v2"

// Deprecated flags list.
const deprecatedUsage = "DEPRECATED. DO NOT USE."

var (
	// To deprecate a feature flag, first copy the example below, then insert deprecated flag in `deprecatedFlags`.
	exampleDeprecatedFeatureFlag = &cli.StringFlag{
		Name:   "name",
		Usage:  deprecatedUsage,
		Hidden: true,
	}
	// Innerhtml hashing subsumed the old text-only comparison.
	deprecatedDisableHTMLHashing = &cli.BoolFlag{
		Name:   "disable-html-hashing",
		Usage:  deprecatedUsage,
		Hidden: true,
	}
)

// deprecatedFlags holds flags that are kept only so old deployments fail loudly.
var deprecatedFlags = []cli.Flag{
	exampleDeprecatedFeatureFlag,
	deprecatedDisableHTMLHashing,
}
