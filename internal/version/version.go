// Package version carries the build stamp shown by widen --version.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/MeKo-Tech/widen/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version, commit and build date. Binaries installed with
// go install carry no ldflags, so the module version and VCS stamp from the
// embedded build info fill the gaps.
func Info() (string, string, string) {
	ver, commit, date := Version, GitCommit, BuildDate
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ver, commit, date
	}
	if ver == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		ver = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return ver, commit, date
}

// String formats the stamp for the --version output.
func String() string {
	ver, commit, date := Info()
	return fmt.Sprintf("widen version %s\nCommit: %s\nDate: %s", ver, commit, date)
}
