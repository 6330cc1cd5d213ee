// Package version provides information about the build version of the binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// BuildInfo holds version information about the build.
type BuildInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'repotraffic/internal/core/version.version=v0.1.0'
	// -X 'repotraffic/internal/core/version.commit=abcd' -X 'repotraffic/internal/core/version.date=2025-09-02'"
	v := version
	if v == "dev" {
		// go install pkg@vX records the module version
		if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return BuildInfo{
		Name:    "repotraffic",
		Version: v,
		Commit:  commit,
		Date:    date,
	}
}

// String renders "<name> <version>" with commit and date when known
func (b BuildInfo) String() string {
	s := fmt.Sprintf("%s %s", b.Name, b.Version)
	if b.Commit != "none" || b.Date != "unknown" {
		s += fmt.Sprintf(" (commit %s, built %s)", b.Commit, b.Date)
	}
	return s
}

var readBuildInfo = debug.ReadBuildInfo

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
