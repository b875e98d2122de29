package version

import (
	"fmt"
	"runtime"
)

// Build-time variables injected via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// Info returns the short version string.
func Info() string {
	return Version
}

// Full returns the version with the commit hash appended when known.
func Full() string {
	if GitCommit != "" && GitCommit != "unknown" {
		return fmt.Sprintf("%s (%s)", Version, shortCommit())
	}
	return Version
}

// UserAgent returns a user agent string for HTTP clients.
func UserAgent() string {
	return fmt.Sprintf("legalhub/%s", Info())
}

func shortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}
