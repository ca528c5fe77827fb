// Package version reports build information for the -version flag.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These are set at build time via -ldflags; they default to "dev" builds.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// PrintBuildInfo prints the version, commit, build time, and target
// OS/architecture for the running binary.
func PrintBuildInfo() {
	commit, buildTime := GitCommit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if commit == "unknown" {
					commit = setting.Value
				}
			case "vcs.time":
				if buildTime == "unknown" {
					buildTime = setting.Value
				}
			}
		}
	}

	fmt.Printf("gones %s (commit %s, built %s) %s/%s\n",
		Version, commit, buildTime, runtime.GOOS, runtime.GOARCH)
}
