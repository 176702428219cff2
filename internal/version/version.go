// Package version holds build metadata injected with -ldflags, for example
//
//	-X github.com/MeKo-Tech/barcoded/internal/version.Version=v1.2.0
package version

import (
	"fmt"
	"runtime/debug"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version, commit and build date. Missing values fall back to
// the module build info embedded by the Go toolchain.
func Info() (string, string, string) {
	v, commit, date := Version, GitCommit, BuildDate
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v, commit, date
	}
	if v == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return v, commit, date
}

// String formats Info on one line.
func String() string {
	v, commit, date := Info()
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
}
