// Package version reports the sergey build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X git.home.luguber.info/inful/sergey/internal/version.Version=v1.0.0".
var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Resolved returns Version, or the module version recorded by the Go
// toolchain when no version was linked in.
func Resolved() string {
	if Version != "unknown" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String is the one-line form printed by --version.
func String() string {
	return fmt.Sprintf("sergey %s (commit %s, built %s)", Resolved(), GitCommit, BuildTime)
}
