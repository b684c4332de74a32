// Package version reports what build of the dashboard is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set via -ldflags at release time; left at defaults for go-run builds.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info is the payload served by /api/version and printed by the CLI.
type Info struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time,omitempty"`
	GoVersion  string `json:"go_version"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Dirty      bool   `json:"dirty,omitempty"`
}

// Get resolves the ldflags values and whatever VCS stamping the Go
// toolchain embedded in the binary.
func Get() Info {
	info := Info{Version: Version, GoVersion: "unknown"}
	if BuildTime != "unknown" {
		info.BuildTime = BuildTime
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			info.CommitTime = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// String renders a one-line description, e.g.
// "radius-finance dev (ab12cd34, go1.23.1)".
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	if commit == "" {
		commit = "no-vcs"
	}
	if i.Dirty {
		commit += "+dirty"
	}
	return fmt.Sprintf("radius-finance %s (%s, %s)", i.Version, commit, i.GoVersion)
}
