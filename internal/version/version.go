// Package version carries build information set by compiler flags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the engine version.
	Version = "0.1.0"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildTime is the time the binary was built.
	BuildTime = "unknown"

	// GoVersion is the version of Go used to build the binary.
	GoVersion = runtime.Version()
)

// FullVersion returns the full version string including commit and build time.
func FullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", Version, GitCommit, BuildTime, GoVersion)
}
