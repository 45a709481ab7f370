// Package version holds build metadata injected at link time.
package version

// These are set via -ldflags at build time.
var (
	// GitRelease is the release tag or short commit hash.
	GitRelease = "dev"

	// BuildDate is the UTC build timestamp.
	BuildDate = "unknown"
)
