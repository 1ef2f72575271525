// Package version holds build-time metadata, overridden via -ldflags at
// release build time (teacher's internal/version pattern).
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
