// Package cmd holds build metadata for the appcfg binary, injected via
// ldflags at release time.
package cmd

// Build-time variables set via ldflags, e.g.
// -X github.com/thoreinstein/appcfg/cmd.Version=v1.2.6.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
